package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/service"
)

// HandlePublishPostTask returns the error itself when a retry may succeed and
// wraps asynq.SkipRetry otherwise.
func (w *Worker) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	postID, err := models.ParseInternalID(payload.PostID)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	post, err := w.p.PublishScheduled(ctx, postID, payload.UserID, payload.ScheduledAt)
	switch {
	case err == nil:
		slog.Info("scheduled post published", "post_id", post.ID.String())
		return nil
	case errors.Is(err, models.ErrAlreadyPublished), errors.Is(err, service.ErrScheduleSuperseded):
		slog.Info("scheduled publish skipped", "post_id", payload.PostID, "reason", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	case models.Retriable(err):
		return err
	default:
		slog.Error("scheduled publish failed", "post_id", payload.PostID, "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
}
