package models

import (
	"errors"
	"time"
)

type PublishState string

const (
	PublishStateDraft      PublishState = "draft"
	PublishStatePublishing PublishState = "publishing"
	PublishStatePublished  PublishState = "published"
	PublishStateFailed     PublishState = "failed"
)

var ErrInconsistentPublishStatus = errors.New("published and published_at disagree")

// PublishStatus is the persisted half of the publish state machine. Publishing
// and Failed are never stored: a failed attempt leaves the post a draft.
type PublishStatus struct {
	Published   bool       `db:"published" json:"published"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	PublishURL  *string    `db:"publish_url" json:"publish_url,omitempty"`
}

func (s PublishStatus) State() PublishState {
	if s.Published {
		return PublishStatePublished
	}
	return PublishStateDraft
}

// Validate checks that published and published_at are set together.
func (s PublishStatus) Validate() error {
	if s.Published != (s.PublishedAt != nil) {
		return ErrInconsistentPublishStatus
	}
	return nil
}

// PublishOutcome is what a successful upstream call yields.
type PublishOutcome struct {
	URL        string
	ExternalID ExternalID
}

// Transition computes the status after a publish attempt. A nil outcome or
// one without a URL is a failed attempt and leaves the draft unchanged.
func (s PublishStatus) Transition(outcome *PublishOutcome, now time.Time) (PublishStatus, PublishState, error) {
	if s.Published {
		return s, PublishStatePublished, ErrAlreadyPublished
	}
	if outcome == nil || outcome.URL == "" {
		return s, PublishStateFailed, nil
	}
	url := outcome.URL
	publishedAt := now.UTC()
	return PublishStatus{
		Published:   true,
		PublishedAt: &publishedAt,
		PublishURL:  &url,
	}, PublishStatePublished, nil
}
