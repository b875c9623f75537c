package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/maheshrc27/postsync/internal/models"
)

type ApiKeyRepository interface {
	GetUserIDByKey(ctx context.Context, apiKey string) (int64, bool, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	Create(ctx context.Context, apiKey *models.ApiKey) (int64, error)
	RemoveForUser(ctx context.Context, keyID, userID int64) (bool, error)
}

type apiKeyRepository struct {
	db *sql.DB
}

func NewApiKeyRepository(db *sql.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) GetUserIDByKey(ctx context.Context, apiKey string) (int64, bool, error) {
	var userID int64
	query := "SELECT user_id FROM api_keys WHERE api_key = $1"
	err := r.db.QueryRowContext(ctx, query, apiKey).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, storageError("get api key", err)
	}
	return userID, true, nil
}

func (r *apiKeyRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	query := `SELECT id, user_id, api_key, created_at FROM api_keys WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storageError("list api keys", err)
	}
	defer rows.Close()

	apiKeys := []*models.ApiKey{}
	for rows.Next() {
		var apiKey models.ApiKey
		if err := rows.Scan(&apiKey.ID, &apiKey.UserID, &apiKey.ApiKey, &apiKey.CreatedAt); err != nil {
			return nil, storageError("list api keys", err)
		}
		apiKeys = append(apiKeys, &apiKey)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list api keys", err)
	}
	return apiKeys, nil
}

func (r *apiKeyRepository) Create(ctx context.Context, apiKey *models.ApiKey) (int64, error) {
	query := "INSERT INTO api_keys (user_id, api_key) VALUES ($1, $2) RETURNING id"
	var id int64
	err := r.db.QueryRowContext(ctx, query, apiKey.UserID, apiKey.ApiKey).Scan(&id)
	if err != nil {
		return 0, storageError("create api key", err)
	}
	return id, nil
}

// RemoveForUser deletes the key only if it belongs to userID.
func (r *apiKeyRepository) RemoveForUser(ctx context.Context, keyID, userID int64) (bool, error) {
	query := `DELETE FROM api_keys WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, keyID, userID)
	if err != nil {
		return false, storageError("remove api key", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageError("remove api key", err)
	}
	return n == 1, nil
}
