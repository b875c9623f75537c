package service

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/repository"
	"github.com/maheshrc27/postsync/internal/transfer"
)

type CommentWriter interface {
	Write(ctx context.Context, postID models.InternalID, entries []transfer.CommentEntry) (models.BatchResult, error)
}

type commentWriter struct {
	cr repository.CommentRepository
}

func NewCommentWriter(cr repository.CommentRepository) CommentWriter {
	return &commentWriter{cr: cr}
}

// Write persists entries against the resolved internal post id as one batch.
func (w *commentWriter) Write(ctx context.Context, postID models.InternalID, entries []transfer.CommentEntry) (models.BatchResult, error) {
	comments := make([]models.Comment, 0, len(entries))
	for _, e := range entries {
		comments = append(comments, toComment(postID, e))
	}

	result, err := w.cr.InsertBatch(ctx, comments)
	if err != nil {
		return models.BatchResult{}, err
	}

	slog.Info("comments written", "post_id", postID.String(), "inserted", result.Inserted, "duplicates", result.Duplicates)
	return result, nil
}

func toComment(postID models.InternalID, e transfer.CommentEntry) models.Comment {
	var content string
	if e.Message != nil {
		content = *e.Message
	}
	return models.Comment{
		ID:                models.NewInternalID(),
		PostID:            postID,
		Content:           content,
		AuthorDisplayName: e.Author.DisplayName,
		ExternalID:        models.ExternalID(e.ExternalCommentID).Ptr(),
		Source:            models.CommentSourceAutomation,
	}
}
