package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maheshrc27/postsync/internal/ingest"
	"github.com/maheshrc27/postsync/internal/models"
)

// IngestionService runs a webhook delivery through decode, validate, resolve
// and write. Nothing is persisted unless every step before the write succeeds.
type IngestionService interface {
	Ingest(ctx context.Context, body []byte) (models.BatchResult, error)
}

// maxArchivedBytes bounds what a single undecodable delivery can put in the
// diagnostics bucket. Unauthenticated senders reach this path.
const maxArchivedBytes = 64 << 10

type ingestionService struct {
	decoder  ingest.Decoder
	resolver IdentityResolver
	writer   CommentWriter
	archiver Archiver
}

func NewIngestionService(decoder ingest.Decoder, resolver IdentityResolver, writer CommentWriter, archiver Archiver) IngestionService {
	if archiver == nil {
		archiver = NopArchiver{}
	}
	return &ingestionService{
		decoder:  decoder,
		resolver: resolver,
		writer:   writer,
		archiver: archiver,
	}
}

func (s *ingestionService) Ingest(ctx context.Context, body []byte) (models.BatchResult, error) {
	payload, err := s.decoder.Decode(body)
	if err != nil {
		s.logDecodeFailure(ctx, body, err)
		return models.BatchResult{}, err
	}

	if err := payload.Validate(); err != nil {
		slog.Info("ingestion payload rejected", "error", err)
		return models.BatchResult{}, err
	}

	postID, err := s.resolver.Resolve(ctx, payload.PlatformPostID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			slog.Info("ingestion for unknown post", "platform_post_id", payload.PlatformPostID.String())
		}
		return models.BatchResult{}, err
	}

	return s.writer.Write(ctx, postID, payload.Comments)
}

func (s *ingestionService) logDecodeFailure(ctx context.Context, body []byte, err error) {
	attrs := []any{"size", len(body)}

	var derr *models.DecodeError
	if errors.As(err, &derr) {
		attrs = append(attrs, "form_fields", derr.Fields)
	}

	archived := body
	if len(archived) > maxArchivedBytes {
		archived = archived[:maxArchivedBytes]
		attrs = append(attrs, "archive_truncated", true)
	}

	key, archiveErr := s.archiver.Archive(ctx, archived)
	switch {
	case archiveErr != nil:
		slog.Error("archiving undecodable body failed", "error", archiveErr)
	case key != "":
		attrs = append(attrs, "archive_key", key)
	}

	slog.Info("undecodable ingestion body", attrs...)
}
