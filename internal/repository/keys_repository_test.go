package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/postsync/internal/models"
)

func TestGetUserIDByKey(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewApiKeyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM api_keys WHERE api_key = $1")).
		WithArgs("key-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(42)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id FROM api_keys WHERE api_key = $1")).
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)

	userID, ok, err := repo.GetUserIDByKey(context.Background(), "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)

	_, ok, err = repo.GetUserIDByKey(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateApiKey(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewApiKeyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO api_keys (user_id, api_key) VALUES ($1, $2) RETURNING id")).
		WithArgs(int64(3), "abc").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := repo.Create(context.Background(), &models.ApiKey{UserID: 3, ApiKey: "abc"})

	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestRemoveForUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewApiKeyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM api_keys WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(11), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM api_keys WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(11), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.RemoveForUser(context.Background(), 11, 3)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveForUser(context.Background(), 11, 4)
	require.NoError(t, err)
	assert.False(t, removed)
}
