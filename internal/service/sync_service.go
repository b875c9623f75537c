package service

import (
	"context"

	"github.com/maheshrc27/postsync/internal/repository"
	"github.com/maheshrc27/postsync/internal/transfer"
)

type SyncService interface {
	IdentifierPairs(ctx context.Context) ([]transfer.IdentifierPair, error)
}

type syncService struct {
	pr repository.PostRepository
}

func NewSyncService(pr repository.PostRepository) SyncService {
	return &syncService{pr: pr}
}

// IdentifierPairs reads straight from storage on every call.
func (s *syncService) IdentifierPairs(ctx context.Context) ([]transfer.IdentifierPair, error) {
	pairs, err := s.pr.ListIdentifierPairs(ctx)
	if err != nil {
		return nil, err
	}

	feed := make([]transfer.IdentifierPair, 0, len(pairs))
	for _, p := range pairs {
		feed = append(feed, transfer.IdentifierPair{UUID: p.ID, PostID: p.ExternalPostID})
	}
	return feed, nil
}
