package models

import "time"

type Post struct {
	ID             InternalID  `db:"id" json:"id"`
	UserID         int64       `db:"user_id" json:"user_id"`
	ExternalPostID *ExternalID `db:"external_post_id" json:"external_post_id"`
	Content        string      `db:"content" json:"content"`
	Platform       string      `db:"platform" json:"platform"`
	PublishStatus
	ScheduledAt *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// IdentifierPair is one row of the sync feed.
type IdentifierPair struct {
	ID             InternalID
	ExternalPostID *ExternalID
}
