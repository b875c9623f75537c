package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/repository"
)

// PublishEnqueuer hands a publish to the job system to run at a given time.
type PublishEnqueuer interface {
	EnqueuePublish(ctx context.Context, postID models.InternalID, userID int64, at time.Time) error
}

type PostService interface {
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID models.InternalID, userID int64) (*models.Post, error)
	Comments(ctx context.Context, postID models.InternalID, userID int64) ([]*models.Comment, error)
	Schedule(ctx context.Context, postID models.InternalID, userID int64, at time.Time) (*models.Post, error)
}

type postService struct {
	pr repository.PostRepository
	cr repository.CommentRepository
	eq PublishEnqueuer
}

func NewPostService(pr repository.PostRepository, cr repository.CommentRepository, eq PublishEnqueuer) PostService {
	return &postService{
		pr: pr,
		cr: cr,
		eq: eq,
	}
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	return s.pr.GetByUserID(ctx, userID)
}

func (s *postService) PostInfo(ctx context.Context, postID models.InternalID, userID int64) (*models.Post, error) {
	return s.pr.GetForUser(ctx, postID, userID)
}

func (s *postService) Comments(ctx context.Context, postID models.InternalID, userID int64) ([]*models.Comment, error) {
	if _, err := s.pr.GetForUser(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.cr.ListByPostID(ctx, postID)
}

// Schedule records when a draft should be published and queues the publish.
// A failed enqueue is only logged: the due-post sweep picks the post up.
func (s *postService) Schedule(ctx context.Context, postID models.InternalID, userID int64, at time.Time) (*models.Post, error) {
	if at.IsZero() {
		return nil, &models.ValidationError{Field: "scheduled_at", Reason: "is required"}
	}
	at = at.UTC().Truncate(time.Second)

	post, err := s.pr.GetForUser(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.Published {
		return nil, models.ErrAlreadyPublished
	}

	if err := s.pr.SetSchedule(ctx, postID, userID, at); err != nil {
		return nil, err
	}
	post.ScheduledAt = &at

	if err := s.eq.EnqueuePublish(ctx, postID, userID, at); err != nil {
		slog.Error("enqueue scheduled publish failed", "post_id", postID.String(), "error", err)
	}
	return post, nil
}
