package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	cfg "github.com/maheshrc27/postsync/configs"
)

const (
	archivePrefix  = "ingest/undecodable"
	archiveTimeout = 5 * time.Second
)

// Archiver keeps a copy of a webhook body nobody could decode so the
// protocol can be debugged later. It returns the object key.
type Archiver interface {
	Archive(ctx context.Context, body []byte) (string, error)
}

// NopArchiver is used when no bucket is configured.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, []byte) (string, error) { return "", nil }

// ObjectPutter is the part of *s3.Client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type R2Archiver struct {
	bucket string
	client ObjectPutter
	now    func() time.Time
}

func NewR2Archiver(bucket string, client ObjectPutter) *R2Archiver {
	return &R2Archiver{bucket: bucket, client: client, now: time.Now}
}

// NewArchiver builds an R2 backed archiver, or a NopArchiver when the bucket
// is not configured.
func NewArchiver(ctx context.Context, c cfg.Config) (Archiver, error) {
	if c.R2.BucketName == "" {
		return NopArchiver{}, nil
	}
	client, err := NewR2Client(ctx, c.R2)
	if err != nil {
		return nil, err
	}
	return NewR2Archiver(c.R2.BucketName, client), nil
}

func NewR2Client(ctx context.Context, r2 cfg.R2) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r2.AccessKey, r2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	}), nil
}

func (a *R2Archiver) Archive(ctx context.Context, body []byte) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s/%s", archivePrefix, a.now().UTC().Format("2006-01-02"), id)

	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(sniffContentType(body)),
	})
	if err != nil {
		slog.Error("r2 upload failed", "key", key, "error", err)
		return "", err
	}
	return key, nil
}

func sniffContentType(body []byte) string {
	kind, err := filetype.Match(body)
	if err == nil && kind != types.Unknown {
		return kind.MIME.Value
	}
	if utf8.Valid(body) {
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}
