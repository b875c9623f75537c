package service

import (
	"context"

	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/repository"
)

// IdentityResolver maps a platform post id to the internal post id.
type IdentityResolver interface {
	Resolve(ctx context.Context, externalID models.ExternalID) (models.InternalID, error)
}

type identityResolver struct {
	pr repository.PostRepository
}

func NewIdentityResolver(pr repository.PostRepository) IdentityResolver {
	return &identityResolver{pr: pr}
}

// Resolve is an exact match on external_post_id. It returns a NotFoundError
// when nothing matches and a StorageError when the lookup itself failed.
func (r *identityResolver) Resolve(ctx context.Context, externalID models.ExternalID) (models.InternalID, error) {
	if externalID == "" {
		return models.InternalID{}, &models.ValidationError{Field: "platform_post_id", Reason: "is required"}
	}
	return r.pr.ResolveExternalID(ctx, externalID)
}
