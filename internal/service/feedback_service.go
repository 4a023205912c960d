package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-orchestrator-be/internal/config"
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/pkg/logger"
	"ai-orchestrator-be/internal/pkg/mailer"
	"ai-orchestrator-be/internal/repository/specification"
	"ai-orchestrator-be/internal/repository/unitofwork"
	"ai-orchestrator-be/pkg/events"
	pktNats "ai-orchestrator-be/pkg/nats"
	"ai-orchestrator-be/pkg/pipeline/learning"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	metricsSnapshotKey = "learning:metrics:snapshot"
	metricsSnapshotTTL = 5 * time.Minute

	lowRatingAlertThreshold   = 2
	suggestionRatingThreshold = 4
)

type IFeedbackService interface {
	Submit(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error)
	GetById(ctx context.Context, id uuid.UUID) (*dto.FeedbackResponse, error)
	GetByRequestId(ctx context.Context, requestId uuid.UUID) ([]*dto.FeedbackResponse, error)
	GetMetrics(ctx context.Context) (*dto.LearningMetricsResponse, error)
	GetSuggestions(ctx context.Context) ([]*dto.SuggestionResponse, error)
	MarkSuggestionImplemented(ctx context.Context, id uuid.UUID) error
}

type feedbackService struct {
	uowFactory     unitofwork.RepositoryFactory
	suggestionGen  *learning.SuggestionGenerator
	textAnalyzer   *learning.TextAnalyzer
	rdb            *redis.Client
	eventPublisher *pktNats.Publisher
	emailService   mailer.IEmailService
	cfg            *config.Config
	logger         logger.ILogger
}

func NewFeedbackService(
	uowFactory unitofwork.RepositoryFactory,
	suggestionGen *learning.SuggestionGenerator,
	textAnalyzer *learning.TextAnalyzer,
	rdb *redis.Client,
	eventPublisher *pktNats.Publisher,
	emailService mailer.IEmailService,
	cfg *config.Config,
	sysLogger logger.ILogger,
) IFeedbackService {
	return &feedbackService{
		uowFactory:     uowFactory,
		suggestionGen:  suggestionGen,
		textAnalyzer:   textAnalyzer,
		rdb:            rdb,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		cfg:            cfg,
		logger:         sysLogger,
	}
}

func (s *feedbackService) Submit(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.FeedbackResponse, error) {
	rating := learning.ClampRating(req.Rating)
	analysis := learning.Analyze(learning.Input{
		Rating:       rating,
		FeedbackType: req.FeedbackType,
		Comment:      req.Comment,
	})

	feedback := &entity.Feedback{
		Id:               uuid.New(),
		RequestId:        req.RequestId,
		SessionId:        req.SessionId,
		Rating:           rating,
		FeedbackType:     req.FeedbackType,
		Comment:          req.Comment,
		Sentiment:        analysis.Sentiment,
		ImprovementAreas: analysis.ImprovementAreas,
		Strengths:        analysis.Strengths,
		Metadata:         req.Metadata,
		CreatedAt:        time.Now(),
	}

	if s.textAnalyzer != nil && req.Comment != "" {
		combined := learning.Combine(analysis, s.textAnalyzer.AnalyzeText(ctx, req.Comment))
		if feedback.Metadata == nil {
			feedback.Metadata = map[string]interface{}{}
		}
		feedback.Metadata["text_sentiment"] = combined.TextSentiment
		feedback.Metadata["text_aspects"] = combined.Aspects
		feedback.Metadata["analysis_confidence"] = combined.Confidence
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.FeedbackRepository().Create(ctx, feedback); err != nil {
		return nil, err
	}

	// Metrics update never fails the submission.
	if _, err := uow.LearningMetricsRepository().ApplyFeedback(ctx, feedback); err != nil {
		s.logger.Error("feedback", "failed to update learning metrics", map[string]interface{}{
			"error":       err.Error(),
			"feedback_id": feedback.Id.String(),
		})
	} else {
		s.invalidateMetricsSnapshot(ctx)
	}

	if rating < suggestionRatingThreshold {
		s.generateSuggestion(ctx, uow, feedback, analysis)
	}

	if s.eventPublisher != nil {
		evt := events.NewFeedbackReceived(feedback.Id, feedback.RequestId, rating, analysis.Sentiment)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("feedback", "failed to publish feedback event", map[string]interface{}{"error": err.Error()})
		}
	}

	if rating <= lowRatingAlertThreshold && s.cfg.SMTP.AlertRecipient != "" {
		go func(rating int, feedbackType, comment string) {
			if err := s.emailService.SendLowRatingAlert(s.cfg.SMTP.AlertRecipient, rating, feedbackType, comment); err != nil {
				s.logger.Warn("feedback", "failed to send low rating alert", map[string]interface{}{"error": err.Error()})
			}
		}(rating, req.FeedbackType, req.Comment)
	}

	return feedbackToDTO(feedback), nil
}

func (s *feedbackService) generateSuggestion(ctx context.Context, uow unitofwork.UnitOfWork, feedback *entity.Feedback, analysis learning.Analysis) {
	suggestion := s.suggestionGen.Generate(ctx, learning.Input{
		Rating:       feedback.Rating,
		FeedbackType: feedback.FeedbackType,
		Comment:      feedback.Comment,
	}, analysis)

	record := &entity.ImprovementSuggestion{
		Id:         uuid.New(),
		FeedbackId: feedback.Id,
		Area:       suggestion.Area,
		Suggestion: suggestion.Suggestion,
		Priority:   suggestion.Priority,
		CreatedAt:  time.Now(),
	}
	if err := uow.SuggestionRepository().Create(ctx, record); err != nil {
		s.logger.Error("feedback", "failed to store suggestion", map[string]interface{}{"error": err.Error()})
		return
	}

	if s.eventPublisher != nil {
		evt := events.NewSuggestionCreated(record.Id, feedback.Id, record.Area, record.Priority, record.Suggestion)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("feedback", "failed to publish suggestion event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (s *feedbackService) GetById(ctx context.Context, id uuid.UUID) (*dto.FeedbackResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	feedback, err := uow.FeedbackRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		return nil, nil
	}
	return feedbackToDTO(feedback), nil
}

func (s *feedbackService) GetByRequestId(ctx context.Context, requestId uuid.UUID) ([]*dto.FeedbackResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	feedbacks, err := uow.FeedbackRepository().FindByRequestId(ctx, requestId)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.FeedbackResponse, len(feedbacks))
	for i, f := range feedbacks {
		res[i] = feedbackToDTO(f)
	}
	return res, nil
}

func (s *feedbackService) GetMetrics(ctx context.Context) (*dto.LearningMetricsResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, metricsSnapshotKey).Bytes(); err == nil {
			var snapshot dto.LearningMetricsResponse
			if err := json.Unmarshal(cached, &snapshot); err == nil {
				return &snapshot, nil
			}
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	metrics, err := uow.LearningMetricsRepository().Get(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.LearningMetricsResponse{
		TotalFeedbackCount:    metrics.TotalFeedbackCount,
		AverageRating:         metrics.AverageRating,
		SentimentDistribution: metrics.SentimentDistribution,
		ImprovementAreas:      metrics.ImprovementAreas,
		Strengths:             metrics.Strengths,
		LastUpdated:           metrics.LastUpdated,
	}

	if s.rdb != nil {
		if data, err := json.Marshal(res); err == nil {
			if err := s.rdb.Set(ctx, metricsSnapshotKey, data, metricsSnapshotTTL).Err(); err != nil {
				log.Printf("[WARN] Failed to cache metrics snapshot: %v", err)
			}
		}
	}
	return res, nil
}

func (s *feedbackService) GetSuggestions(ctx context.Context) ([]*dto.SuggestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	suggestions, err := uow.SuggestionRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SuggestionResponse, len(suggestions))
	for i, sg := range suggestions {
		res[i] = &dto.SuggestionResponse{
			Id:            sg.Id,
			FeedbackId:    sg.FeedbackId,
			Area:          sg.Area,
			Suggestion:    sg.Suggestion,
			Priority:      sg.Priority,
			Implemented:   sg.Implemented,
			ImplementedAt: sg.ImplementedAt,
			CreatedAt:     sg.CreatedAt,
		}
	}
	return res, nil
}

func (s *feedbackService) MarkSuggestionImplemented(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.SuggestionRepository().MarkImplemented(ctx, id)
}

func (s *feedbackService) invalidateMetricsSnapshot(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, metricsSnapshotKey).Err(); err != nil {
		log.Printf("[WARN] Failed to invalidate metrics snapshot: %v", err)
	}
}

func feedbackToDTO(feedback *entity.Feedback) *dto.FeedbackResponse {
	return &dto.FeedbackResponse{
		Id:               feedback.Id,
		RequestId:        feedback.RequestId,
		Rating:           feedback.Rating,
		FeedbackType:     feedback.FeedbackType,
		Comment:          feedback.Comment,
		Sentiment:        feedback.Sentiment,
		ImprovementAreas: feedback.ImprovementAreas,
		Strengths:        feedback.Strengths,
		CreatedAt:        feedback.CreatedAt,
	}
}
