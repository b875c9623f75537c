package transfer

import "github.com/maheshrc27/postsync/internal/models"

// IdentifierPair is one entry of the sync feed. PostID is null until the post
// has been published and assigned an external id.
type IdentifierPair struct {
	UUID   models.InternalID  `json:"uuid"`
	PostID *models.ExternalID `json:"post_id"`
}

type SyncResponse struct {
	Success bool             `json:"success"`
	Posts   []IdentifierPair `json:"posts"`
	Message string           `json:"message,omitempty"`
}
