package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/repository"
)

type stubPostRepo struct {
	repository.PostRepository
	due   []*models.Post
	err   error
	asOf  time.Time
	limit int
}

func (r *stubPostRepo) ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	r.asOf, r.limit = now, limit
	return r.due, r.err
}

type recordingEnqueuer struct {
	ids  []models.InternalID
	fail map[models.InternalID]bool
}

func (e *recordingEnqueuer) EnqueuePublish(ctx context.Context, postID models.InternalID, userID int64, at time.Time) error {
	if e.fail[postID] {
		return errors.New("redis down")
	}
	e.ids = append(e.ids, postID)
	return nil
}

func TestEnqueueDue(t *testing.T) {
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	a := &models.Post{ID: models.NewInternalID(), UserID: 1, ScheduledAt: &past}
	b := &models.Post{ID: models.NewInternalID(), UserID: 2, ScheduledAt: &past}
	c := &models.Post{ID: models.NewInternalID(), UserID: 3, ScheduledAt: &past}

	repo := &stubPostRepo{due: []*models.Post{a, b, c}}
	eq := &recordingEnqueuer{fail: map[models.InternalID]bool{b.ID: true}}
	j := NewDuePostsJob(repo, eq)
	j.now = func() time.Time { return now }

	j.EnqueueDue()

	assert.Equal(t, now, repo.asOf)
	assert.Equal(t, duePostsBatch, repo.limit)
	assert.Equal(t, []models.InternalID{a.ID, c.ID}, eq.ids)
}

func TestEnqueueDue_ListFailure(t *testing.T) {
	eq := &recordingEnqueuer{}
	j := NewDuePostsJob(&stubPostRepo{err: errors.New("down")}, eq)

	j.EnqueueDue()

	assert.Empty(t, eq.ids)
}
