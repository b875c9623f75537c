package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/maheshrc27/postsync/internal/models"
)

const publishMaxRetry = 5

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Client enqueues publish tasks. It implements service.PublishEnqueuer.
type Client struct {
	c TaskEnqueuer
}

func NewClient(c TaskEnqueuer) *Client {
	return &Client{c: c}
}

// PublishTaskID is the same for a given post and schedule, so a task that is
// already queued is not queued twice.
func PublishTaskID(postID models.InternalID, at time.Time) string {
	return fmt.Sprintf("%s:%s:%d", TaskTypePublishPost, postID.String(), at.Unix())
}

func (c *Client) EnqueuePublish(ctx context.Context, postID models.InternalID, userID int64, at time.Time) error {
	payload, err := json.Marshal(PublishPostPayload{PostID: postID.String(), UserID: userID, ScheduledAt: at})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypePublishPost, payload)
	_, err = c.c.EnqueueContext(ctx, task,
		asynq.TaskID(PublishTaskID(postID, at)),
		asynq.ProcessAt(at),
		asynq.MaxRetry(publishMaxRetry),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("publish task scheduled", "post_id", postID.String(), "at", at)
	return nil
}
