package contract

import (
	"context"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/repository/specification"

	"github.com/google/uuid"
)

type InteractionRepository interface {
	Create(ctx context.Context, interaction *entity.Interaction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error)
	FindBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.Interaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
