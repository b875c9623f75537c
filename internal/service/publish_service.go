package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	cfg "github.com/maheshrc27/postsync/configs"
	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/repository"
	"github.com/maheshrc27/postsync/internal/transfer"
)

const (
	maxPublishResponseBytes = 1 << 20
	defaultPublishTimeout   = 30 * time.Second
)

// ErrScheduleSuperseded is returned for a scheduled publish whose time no
// longer matches the post, because it was rescheduled or unscheduled.
var ErrScheduleSuperseded = errors.New("scheduled publish superseded")

// PublishService is the Outbound Publisher.
type PublishService interface {
	Publish(ctx context.Context, postID models.InternalID, userID int64) (*models.Post, error)
	PublishScheduled(ctx context.Context, postID models.InternalID, userID int64, scheduledAt time.Time) (*models.Post, error)
}

type publishService struct {
	cfg    cfg.Publisher
	pr     repository.PostRepository
	client *http.Client
	now    func() time.Time
}

func NewPublishService(c cfg.Publisher, pr repository.PostRepository, client *http.Client) PublishService {
	if client == nil {
		client = http.DefaultClient
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultPublishTimeout
	}
	return &publishService{
		cfg:    c,
		pr:     pr,
		client: client,
		now:    time.Now,
	}
}

// Publish submits the post to the publishing API. The post is written at most
// once, and only after the API returned a usable URL; on any failure it stays
// a draft.
func (s *publishService) Publish(ctx context.Context, postID models.InternalID, userID int64) (*models.Post, error) {
	post, err := s.pr.GetForUser(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return s.publish(ctx, post)
}

func (s *publishService) PublishScheduled(ctx context.Context, postID models.InternalID, userID int64, scheduledAt time.Time) (*models.Post, error) {
	post, err := s.pr.GetForUser(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.Published {
		return nil, models.ErrAlreadyPublished
	}
	if post.ScheduledAt == nil || !post.ScheduledAt.Equal(scheduledAt) {
		return nil, ErrScheduleSuperseded
	}
	return s.publish(ctx, post)
}

func (s *publishService) publish(ctx context.Context, post *models.Post) (*models.Post, error) {
	if post.Published {
		return nil, models.ErrAlreadyPublished
	}

	slog.Info("publishing post", "post_id", post.ID.String(), "platform", post.Platform, "state", models.PublishStatePublishing)

	outcome, err := s.submit(ctx, post)
	if err != nil {
		slog.Info("publish failed", "post_id", post.ID.String(), "state", models.PublishStateFailed, "error", err)
		return nil, err
	}

	next, state, err := post.PublishStatus.Transition(outcome, s.now())
	if err != nil {
		return nil, err
	}
	if state != models.PublishStatePublished {
		return nil, &models.UpstreamError{Reason: "publish response carries no usable url"}
	}

	if err := s.pr.MarkPublished(ctx, post.ID, post.UserID, next, outcome.ExternalID); err != nil {
		return nil, err
	}

	post.PublishStatus = next
	post.ExternalPostID = outcome.ExternalID.Ptr()
	slog.Info("post published", "post_id", post.ID.String(), "external_post_id", outcome.ExternalID.String())
	return post, nil
}

func (s *publishService) submit(ctx context.Context, post *models.Post) (*models.PublishOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(transfer.PublishRequest{
		Post:      post.Content,
		Platforms: []string{strings.ToLower(post.Platform)},
	})
	if err != nil {
		return nil, &models.UpstreamError{Reason: "encode request", Err: err}
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/post"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &models.UpstreamError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPublishResponseBytes))
	if err != nil {
		return nil, s.transportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.UpstreamError{StatusCode: resp.StatusCode, Reason: "unexpected status"}
	}

	outcome, err := transfer.ExtractPublishOutcome(post.Platform, body)
	if err != nil {
		return nil, &models.UpstreamError{StatusCode: resp.StatusCode, Reason: "unusable response", Err: err}
	}
	return outcome, nil
}

func (s *publishService) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &models.TimeoutError{Op: "publish post", After: s.cfg.Timeout}
	}
	return &models.UpstreamError{Reason: "request failed", Err: err}
}
