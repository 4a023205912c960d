package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/pkg/logger"
	"ai-orchestrator-be/internal/repository/specification"
	"ai-orchestrator-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	apiKeyPrefix   = "sk-"
	apiKeyCacheTTL = 10 * time.Minute
)

type IApiKeyService interface {
	Create(ctx context.Context, req *dto.CreateApiKeyRequest) (*dto.CreateApiKeyResponse, error)
	List(ctx context.Context) ([]*dto.ApiKeyResponse, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	Validate(ctx context.Context, key string) error
}

type apiKeyService struct {
	uowFactory unitofwork.RepositoryFactory
	rdb        *redis.Client
	logger     logger.ILogger
}

func NewApiKeyService(
	uowFactory unitofwork.RepositoryFactory,
	rdb *redis.Client,
	sysLogger logger.ILogger,
) IApiKeyService {
	return &apiKeyService{
		uowFactory: uowFactory,
		rdb:        rdb,
		logger:     sysLogger,
	}
}

// Create issues a new key. The plaintext is "sk-<id>.<secret>" and is
// returned exactly once; only the bcrypt hash of the secret is stored.
func (s *apiKeyService) Create(ctx context.Context, req *dto.CreateApiKeyRequest) (*dto.CreateApiKeyResponse, error) {
	secretBytes := make([]byte, 24)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, err
	}
	secret := hex.EncodeToString(secretBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	key := &entity.ApiKey{
		Id:         uuid.New(),
		Name:       req.Name,
		SecretHash: string(hash),
		CreatedAt:  time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ApiKeyRepository().Create(ctx, key); err != nil {
		return nil, err
	}

	return &dto.CreateApiKeyResponse{
		Id:  key.Id,
		Key: fmt.Sprintf("%s%s.%s", apiKeyPrefix, key.Id, secret),
	}, nil
}

func (s *apiKeyService) List(ctx context.Context) ([]*dto.ApiKeyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	keys, err := uow.ApiKeyRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ApiKeyResponse, len(keys))
	for i, key := range keys {
		res[i] = &dto.ApiKeyResponse{
			Id:         key.Id,
			Name:       key.Name,
			Revoked:    key.Revoked(),
			LastUsedAt: key.LastUsedAt,
			CreatedAt:  key.CreatedAt,
		}
	}
	return res, nil
}

func (s *apiKeyService) Revoke(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ApiKeyRepository().Revoke(ctx, id); err != nil {
		return err
	}
	// Validation cache entries expire on their own TTL; revocation takes
	// at most apiKeyCacheTTL to propagate.
	return nil
}

func (s *apiKeyService) Validate(ctx context.Context, key string) error {
	if s.rdb != nil {
		if ok, err := s.rdb.Exists(ctx, validationCacheKey(key)).Result(); err == nil && ok > 0 {
			return nil
		}
	}

	id, secret, err := parseApiKey(key)
	if err != nil {
		return err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	record, err := uow.ApiKeyRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if record == nil || record.Revoked() {
		return fmt.Errorf("api key not found or revoked")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.SecretHash), []byte(secret)); err != nil {
		return fmt.Errorf("api key mismatch")
	}

	if err := uow.ApiKeyRepository().TouchLastUsed(ctx, id); err != nil {
		s.logger.Warn("apikey", "failed to update last_used_at", map[string]interface{}{"error": err.Error()})
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, validationCacheKey(key), "1", apiKeyCacheTTL).Err(); err != nil {
			s.logger.Warn("apikey", "failed to cache key validation", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func parseApiKey(key string) (uuid.UUID, string, error) {
	if !strings.HasPrefix(key, apiKeyPrefix) {
		return uuid.Nil, "", fmt.Errorf("malformed api key")
	}
	parts := strings.SplitN(key[len(apiKeyPrefix):], ".", 2)
	if len(parts) != 2 || parts[1] == "" {
		return uuid.Nil, "", fmt.Errorf("malformed api key")
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("malformed api key")
	}
	return id, parts[1], nil
}

func validationCacheKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "apikey:valid:" + hex.EncodeToString(sum[:])
}
