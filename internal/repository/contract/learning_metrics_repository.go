package contract

import (
	"context"

	"ai-orchestrator-be/internal/entity"
)

type LearningMetricsRepository interface {
	Get(ctx context.Context) (*entity.LearningMetrics, error)
	// ApplyFeedback folds one feedback into the aggregate row inside a
	// row-locked transaction.
	ApplyFeedback(ctx context.Context, feedback *entity.Feedback) (*entity.LearningMetrics, error)
}
