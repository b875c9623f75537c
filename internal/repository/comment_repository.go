package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/maheshrc27/postsync/internal/models"
)

// commentInsertChunk keeps a multi-row insert well under PostgreSQL's 65535
// bind parameter limit (six per row).
const commentInsertChunk = 1000

type CommentRepository interface {
	InsertBatch(ctx context.Context, comments []models.Comment) (models.BatchResult, error)
	ListByPostID(ctx context.Context, postID models.InternalID) ([]*models.Comment, error)
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

// InsertBatch writes all comments in one transaction. Rows whose
// (post_id, external_id) already exist are skipped and counted as duplicates.
func (r *commentRepository) InsertBatch(ctx context.Context, comments []models.Comment) (result models.BatchResult, err error) {
	if len(comments) == 0 {
		return result, nil
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return result, storageError("begin comment batch", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	for start := 0; start < len(comments); start += commentInsertChunk {
		end := min(start+commentInsertChunk, len(comments))
		chunk := comments[start:end]

		query, args := buildCommentInsert(chunk)
		res, execErr := tx.ExecContext(ctx, query, args...)
		if execErr != nil {
			if isForeignKeyViolation(execErr) {
				err = &models.NotFoundError{Resource: "post", Key: chunk[0].PostID.String()}
				return models.BatchResult{}, err
			}
			err = storageError("insert comment batch", execErr)
			return models.BatchResult{}, err
		}
		n, raErr := res.RowsAffected()
		if raErr != nil {
			err = storageError("insert comment batch", raErr)
			return models.BatchResult{}, err
		}
		result.Inserted += int(n)
	}

	if err = tx.Commit(); err != nil {
		err = storageError("commit comment batch", err)
		return models.BatchResult{}, err
	}

	result.Duplicates = len(comments) - result.Inserted
	return result, nil
}

func buildCommentInsert(comments []models.Comment) (string, []any) {
	var b strings.Builder
	b.WriteString(`INSERT INTO comments (id, post_id, content, author_display_name, external_id, source) VALUES `)

	args := make([]any, 0, len(comments)*6)
	for i, c := range comments {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 6
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, c.ID, c.PostID, c.Content, c.AuthorDisplayName, c.ExternalID, c.Source)
	}
	b.WriteString(` ON CONFLICT (post_id, external_id) DO NOTHING`)
	return b.String(), args
}

func (r *commentRepository) ListByPostID(ctx context.Context, postID models.InternalID) ([]*models.Comment, error) {
	query := `SELECT id, post_id, content, author_display_name, external_id, source, created_at
		FROM comments WHERE post_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, storageError("list comments", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		var (
			c          models.Comment
			externalID sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorDisplayName, &externalID, &c.Source, &c.CreatedAt); err != nil {
			return nil, storageError("list comments", err)
		}
		if externalID.Valid {
			c.ExternalID = models.ExternalID(externalID.String).Ptr()
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list comments", err)
	}
	return comments, nil
}
