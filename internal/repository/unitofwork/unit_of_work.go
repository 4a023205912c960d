package unitofwork

import (
	"context"

	"ai-orchestrator-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	MessageRepository() contract.MessageRepository
	DocumentRepository() contract.DocumentRepository
	DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository

	FeedbackRepository() contract.FeedbackRepository
	LearningMetricsRepository() contract.LearningMetricsRepository
	SuggestionRepository() contract.SuggestionRepository
	InteractionRepository() contract.InteractionRepository
	ApiKeyRepository() contract.ApiKeyRepository
}
