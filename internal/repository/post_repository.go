package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/maheshrc27/postsync/internal/models"
)

type PostRepository interface {
	ResolveExternalID(ctx context.Context, externalID models.ExternalID) (models.InternalID, error)
	GetByID(ctx context.Context, id models.InternalID) (*models.Post, error)
	GetForUser(ctx context.Context, id models.InternalID, userID int64) (*models.Post, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	ListIdentifierPairs(ctx context.Context) ([]models.IdentifierPair, error)
	ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	MarkPublished(ctx context.Context, id models.InternalID, userID int64, status models.PublishStatus, externalID models.ExternalID) error
	SetSchedule(ctx context.Context, id models.InternalID, userID int64, at time.Time) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, external_post_id, content, platform, published, published_at, publish_url, scheduled_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		post        models.Post
		externalID  sql.NullString
		publishedAt sql.NullTime
		publishURL  sql.NullString
		scheduledAt sql.NullTime
	)
	err := row.Scan(&post.ID, &post.UserID, &externalID, &post.Content, &post.Platform,
		&post.Published, &publishedAt, &publishURL, &scheduledAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if externalID.Valid {
		post.ExternalPostID = models.ExternalID(externalID.String).Ptr()
	}
	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	if publishURL.Valid {
		post.PublishURL = &publishURL.String
	}
	if scheduledAt.Valid {
		post.ScheduledAt = &scheduledAt.Time
	}
	return &post, nil
}

// ResolveExternalID looks the post up by its platform id. The column is not
// the primary key because locally authored posts have none yet.
func (r *postRepository) ResolveExternalID(ctx context.Context, externalID models.ExternalID) (models.InternalID, error) {
	query := `SELECT id FROM posts WHERE external_post_id = $1`

	var id models.InternalID
	err := r.db.QueryRowContext(ctx, query, externalID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.InternalID{}, &models.NotFoundError{Resource: "post", Key: externalID.String()}
		}
		return models.InternalID{}, storageError("resolve external post id", err)
	}
	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id models.InternalID) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "post", Key: id.String()}
		}
		return nil, storageError("get post", err)
	}
	return post, nil
}

func (r *postRepository) GetForUser(ctx context.Context, id models.InternalID, userID int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND user_id = $2`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "post", Key: id.String()}
		}
		return nil, storageError("get post for user", err)
	}
	return post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryPosts(ctx, "list posts", query, userID)
}

func (r *postRepository) ListDueScheduled(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE published = false AND scheduled_at IS NOT NULL AND scheduled_at <= $1
		ORDER BY scheduled_at
		LIMIT $2`
	return r.queryPosts(ctx, "list due posts", query, now, limit)
}

func (r *postRepository) queryPosts(ctx context.Context, op, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, storageError(op, err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(op, err)
	}
	return posts, nil
}

// ListIdentifierPairs returns every post's internal and external id as of the
// moment of the query.
func (r *postRepository) ListIdentifierPairs(ctx context.Context) ([]models.IdentifierPair, error) {
	query := `SELECT id, external_post_id FROM posts ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageError("list identifier pairs", err)
	}
	defer rows.Close()

	pairs := []models.IdentifierPair{}
	for rows.Next() {
		var (
			pair       models.IdentifierPair
			externalID sql.NullString
		)
		if err := rows.Scan(&pair.ID, &externalID); err != nil {
			return nil, storageError("list identifier pairs", err)
		}
		if externalID.Valid {
			pair.ExternalPostID = models.ExternalID(externalID.String).Ptr()
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list identifier pairs", err)
	}
	return pairs, nil
}

// MarkPublished applies the only publish mutation. The published = false
// guard makes a concurrent second publish affect zero rows.
func (r *postRepository) MarkPublished(ctx context.Context, id models.InternalID, userID int64, status models.PublishStatus, externalID models.ExternalID) error {
	if err := status.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE posts
		SET published = $1,
			published_at = $2,
			publish_url = $3,
			external_post_id = $4,
			updated_at = $5
		WHERE id = $6 AND user_id = $7 AND published = false
	`
	res, err := r.db.ExecContext(ctx, query, status.Published, status.PublishedAt, status.PublishURL,
		externalID.Ptr(), time.Now(), id, userID)
	if err != nil {
		return storageError("mark post published", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storageError("mark post published", err)
	}
	if n == 0 {
		return models.ErrAlreadyPublished
	}
	return nil
}

func (r *postRepository) SetSchedule(ctx context.Context, id models.InternalID, userID int64, at time.Time) error {
	query := `
		UPDATE posts
		SET scheduled_at = $1,
			updated_at = $2
		WHERE id = $3 AND user_id = $4 AND published = false
	`
	res, err := r.db.ExecContext(ctx, query, at, time.Now(), id, userID)
	if err != nil {
		return storageError("schedule post", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storageError("schedule post", err)
	}
	if n == 0 {
		return models.ErrAlreadyPublished
	}
	return nil
}
