package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/maheshrc27/postsync/internal/repository"
	"github.com/maheshrc27/postsync/internal/service"
)

const (
	duePostsBatch   = 100
	duePostsTimeout = 30 * time.Second
)

// DuePostsJob re-enqueues scheduled drafts whose time has passed. Tasks that
// are still queued are deduplicated by their task id.
type DuePostsJob struct {
	pr  repository.PostRepository
	eq  service.PublishEnqueuer
	now func() time.Time
}

func NewDuePostsJob(pr repository.PostRepository, eq service.PublishEnqueuer) *DuePostsJob {
	return &DuePostsJob{
		pr:  pr,
		eq:  eq,
		now: time.Now,
	}
}

// EnqueueDue is registered with cron, so it has no return value.
func (j *DuePostsJob) EnqueueDue() {
	ctx, cancel := context.WithTimeout(context.Background(), duePostsTimeout)
	defer cancel()

	posts, err := j.pr.ListDueScheduled(ctx, j.now(), duePostsBatch)
	if err != nil {
		slog.Error("listing due posts", "error", err)
		return
	}

	enqueued := 0
	for _, post := range posts {
		if post.ScheduledAt == nil {
			continue
		}
		if err := j.eq.EnqueuePublish(ctx, post.ID, post.UserID, *post.ScheduledAt); err != nil {
			slog.Error("enqueue due post", "post_id", post.ID.String(), "error", err)
			continue
		}
		enqueued++
	}

	if len(posts) > 0 {
		slog.Info("due post sweep", "due", len(posts), "enqueued", enqueued)
	}
}
