package contract

import (
	"context"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ApiKeyRepository interface {
	Create(ctx context.Context, key *entity.ApiKey) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ApiKey, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ApiKey, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
}
