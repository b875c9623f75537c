package transfer

import (
	"encoding/json"
	"fmt"

	"github.com/maheshrc27/postsync/internal/models"
)

// IngestionPayload is what the automation platform posts to the comments
// webhook.
type IngestionPayload struct {
	PlatformPostID models.ExternalID `json:"platform_post_id"`
	Comments       []CommentEntry    `json:"comments"`
}

type CommentAuthor struct {
	DisplayName    string `json:"display_name"`
	PlatformUserID string `json:"platform_user_id"`
}

// CommentEntry marshals in the canonical shape and unmarshals from either the
// canonical shape or the Graph API shape ({"id", "from": {"name", "id"}}).
type CommentEntry struct {
	ExternalCommentID string        `json:"external_comment_id"`
	Author            CommentAuthor `json:"author"`
	Message           *string       `json:"message"`

	messageNotString bool
}

func (c *CommentEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		ExternalCommentID string         `json:"external_comment_id"`
		ID                string         `json:"id"`
		Author            *CommentAuthor `json:"author"`
		From              *struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"from"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = CommentEntry{ExternalCommentID: firstNonEmpty(raw.ExternalCommentID, raw.ID)}
	if raw.Author != nil {
		c.Author = *raw.Author
	}
	if raw.From != nil {
		c.Author.DisplayName = firstNonEmpty(c.Author.DisplayName, raw.From.Name)
		c.Author.PlatformUserID = firstNonEmpty(c.Author.PlatformUserID, raw.From.ID)
	}

	if len(raw.Message) > 0 && string(raw.Message) != "null" {
		var msg string
		if err := json.Unmarshal(raw.Message, &msg); err != nil {
			c.messageNotString = true
		} else {
			c.Message = &msg
		}
	}
	return nil
}

// Validate enforces that the payload names a post and carries at least one
// fully identified comment.
func (p *IngestionPayload) Validate() error {
	if p.PlatformPostID == "" {
		return &models.ValidationError{Field: "platform_post_id", Reason: "is required"}
	}
	if len(p.Comments) == 0 {
		return &models.ValidationError{Field: "comments", Reason: "must be a non-empty list"}
	}
	for i, c := range p.Comments {
		if c.ExternalCommentID == "" {
			return &models.ValidationError{Field: fmt.Sprintf("comments[%d].external_comment_id", i), Reason: "is required"}
		}
		if c.Author.DisplayName == "" {
			return &models.ValidationError{Field: fmt.Sprintf("comments[%d].author.display_name", i), Reason: "is required"}
		}
		if c.messageNotString {
			return &models.ValidationError{Field: fmt.Sprintf("comments[%d].message", i), Reason: "must be a string"}
		}
		if c.Message == nil {
			return &models.ValidationError{Field: fmt.Sprintf("comments[%d].message", i), Reason: "is required"}
		}
	}
	return nil
}

// IngestionResponse is returned by the comments webhook.
type IngestionResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Inserted   int    `json:"inserted,omitempty"`
	Duplicates int    `json:"duplicates,omitempty"`
	Error      string `json:"error,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
