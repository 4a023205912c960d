package contract

import (
	"context"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *entity.ImprovementSuggestion) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ImprovementSuggestion, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImprovementSuggestion, error)
	MarkImplemented(ctx context.Context, id uuid.UUID) error
}
