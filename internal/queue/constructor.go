package queue

import (
	"time"

	"github.com/maheshrc27/postsync/internal/service"
)

const TaskTypePublishPost = "publish:post"

// PublishPostPayload identifies the post and the schedule the task was
// created for.
type PublishPostPayload struct {
	PostID      string    `json:"post_id"`
	UserID      int64     `json:"user_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Worker runs publish tasks through the Outbound Publisher.
type Worker struct {
	p service.PublishService
}

func NewWorker(p service.PublishService) *Worker {
	return &Worker{p: p}
}
