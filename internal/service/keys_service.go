package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/repository"
	"github.com/maheshrc27/postsync/pkg/utils"
)

var (
	ErrApiKeyLimit   = fmt.Errorf("only %d API keys can be created", models.MaxApiKeysPerUser)
	ErrApiKeyUnknown = errors.New("key doesn't exist")
)

type ApiKeyService interface {
	Create(ctx context.Context, userID int64) (*models.ApiKey, error)
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	GetUserID(ctx context.Context, apiKey string) (int64, error)
	RemoveAPIKey(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	k repository.ApiKeyRepository
}

func NewApiKeyService(k repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{
		k: k,
	}
}

func (s *apiKeyService) Create(ctx context.Context, userID int64) (*models.ApiKey, error) {
	keys, err := s.k.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(keys) >= models.MaxApiKeysPerUser {
		slog.Info(ErrApiKeyLimit.Error(), "user_id", userID)
		return nil, ErrApiKeyLimit
	}

	key, err := utils.GenerateAPIKey()
	if err != nil {
		slog.Error("generating api key", "error", err)
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	apiKey := &models.ApiKey{
		UserID: userID,
		ApiKey: key,
	}

	id, err := s.k.Create(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	apiKey.ID = id
	return apiKey, nil
}

func (s *apiKeyService) GetUserID(ctx context.Context, apiKey string) (int64, error) {
	userID, ok, err := s.k.GetUserIDByKey(ctx, apiKey)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrApiKeyUnknown
	}
	return userID, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	return s.k.GetByUserID(ctx, userID)
}

func (s *apiKeyService) RemoveAPIKey(ctx context.Context, userID, keyID int64) error {
	if userID == 0 {
		return &models.ValidationError{Field: "user_id", Reason: "is not valid"}
	}
	if keyID == 0 {
		return &models.ValidationError{Field: "id", Reason: "is not valid"}
	}

	removed, err := s.k.RemoveForUser(ctx, keyID, userID)
	if err != nil {
		return err
	}
	if !removed {
		slog.Info("api key not removed", "key_id", keyID, "user_id", userID)
		return ErrApiKeyUnknown
	}
	return nil
}
