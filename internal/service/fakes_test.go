package service

import (
	"context"
	"sync"
	"time"

	"github.com/maheshrc27/postsync/internal/models"
)

// fakePostRepo keeps posts in memory and records publish mutations.
type fakePostRepo struct {
	mu        sync.Mutex
	posts     map[models.InternalID]*models.Post
	err       error
	markCalls int
	markErr   error
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: map[models.InternalID]*models.Post{}}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) ResolveExternalID(ctx context.Context, externalID models.ExternalID) (models.InternalID, error) {
	if r.err != nil {
		return models.InternalID{}, r.err
	}
	for _, p := range r.posts {
		if p.ExternalPostID != nil && *p.ExternalPostID == externalID {
			return p.ID, nil
		}
	}
	return models.InternalID{}, &models.NotFoundError{Resource: "post", Key: externalID.String()}
}

func (r *fakePostRepo) GetByID(ctx context.Context, id models.InternalID) (*models.Post, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.posts[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "post", Key: id.String()}
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) GetForUser(ctx context.Context, id models.InternalID, userID int64) (*models.Post, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, &models.NotFoundError{Resource: "post", Key: id.String()}
	}
	return p, nil
}

func (r *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	if r.err != nil {
		return nil, r.err
	}
	posts := []*models.Post{}
	for _, p := range r.posts {
		if p.UserID == userID {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) ListIdentifierPairs(ctx context.Context) ([]models.IdentifierPair, error) {
	if r.err != nil {
		return nil, r.err
	}
	pairs := []models.IdentifierPair{}
	for _, p := range r.posts {
		pairs = append(pairs, models.IdentifierPair{ID: p.ID, ExternalPostID: p.ExternalPostID})
	}
	return pairs, nil
}

func (r *fakePostRepo) ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) MarkPublished(ctx context.Context, id models.InternalID, userID int64, status models.PublishStatus, externalID models.ExternalID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls++
	if r.markErr != nil {
		return r.markErr
	}
	p := r.posts[id]
	if p.Published {
		return models.ErrAlreadyPublished
	}
	p.PublishStatus = status
	p.ExternalPostID = externalID.Ptr()
	return nil
}

func (r *fakePostRepo) SetSchedule(ctx context.Context, id models.InternalID, userID int64, at time.Time) error {
	if r.err != nil {
		return r.err
	}
	p := r.posts[id]
	if p.Published {
		return models.ErrAlreadyPublished
	}
	p.ScheduledAt = &at
	return nil
}

type fakeCommentRepo struct {
	inserted []models.Comment
	err      error
	seen     map[string]bool
}

func (r *fakeCommentRepo) InsertBatch(ctx context.Context, comments []models.Comment) (models.BatchResult, error) {
	if r.err != nil {
		return models.BatchResult{}, r.err
	}
	if r.seen == nil {
		r.seen = map[string]bool{}
	}
	var result models.BatchResult
	for _, c := range comments {
		key := c.PostID.String() + "/" + c.ExternalID.String()
		if r.seen[key] {
			result.Duplicates++
			continue
		}
		r.seen[key] = true
		r.inserted = append(r.inserted, c)
		result.Inserted++
	}
	return result, nil
}

func (r *fakeCommentRepo) ListByPostID(ctx context.Context, postID models.InternalID) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	for i := range r.inserted {
		if r.inserted[i].PostID == postID {
			comments = append(comments, &r.inserted[i])
		}
	}
	return comments, nil
}

type fakeArchiver struct {
	bodies [][]byte
	err    error
}

func (a *fakeArchiver) Archive(ctx context.Context, body []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.bodies = append(a.bodies, append([]byte(nil), body...))
	return "ingest/undecodable/test", nil
}

type fakeEnqueuer struct {
	calls []time.Time
	err   error
}

func (e *fakeEnqueuer) EnqueuePublish(ctx context.Context, postID models.InternalID, userID int64, at time.Time) error {
	e.calls = append(e.calls, at)
	return e.err
}

func extPtr(s string) *models.ExternalID {
	return models.ExternalID(s).Ptr()
}
