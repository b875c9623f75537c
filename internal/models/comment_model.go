package models

import "time"

// CommentSourceAutomation labels comments delivered by the automation
// platform webhook.
const CommentSourceAutomation = "automation_webhook"

type Comment struct {
	ID                InternalID  `db:"id" json:"id"`
	PostID            InternalID  `db:"post_id" json:"post_id"`
	Content           string      `db:"content" json:"content"`
	AuthorDisplayName string      `db:"author_display_name" json:"author_display_name"`
	ExternalID        *ExternalID `db:"external_id" json:"external_id,omitempty"`
	Source            string      `db:"source" json:"source"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
}

// BatchResult reports the outcome of a comment batch insert. Duplicates are
// entries whose (post_id, external_id) already existed.
type BatchResult struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}
