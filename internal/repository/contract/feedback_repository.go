package contract

import (
	"context"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feedback, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error)
	FindByRequestId(ctx context.Context, requestId uuid.UUID) ([]*entity.Feedback, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
