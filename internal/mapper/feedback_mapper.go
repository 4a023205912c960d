package mapper

import (
	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/model"
)

type FeedbackMapper struct{}

func NewFeedbackMapper() *FeedbackMapper {
	return &FeedbackMapper{}
}

func (m *FeedbackMapper) ToEntity(e *model.Feedback) *entity.Feedback {
	if e == nil {
		return nil
	}

	return &entity.Feedback{
		Id:               e.Id,
		RequestId:        e.RequestId,
		SessionId:        e.SessionId,
		Rating:           e.Rating,
		FeedbackType:     e.FeedbackType,
		Comment:          e.Comment,
		Sentiment:        e.Sentiment,
		ImprovementAreas: jsonToStringSlice(e.ImprovementAreas),
		Strengths:        jsonToStringSlice(e.Strengths),
		Metadata:         jsonToMap(e.Metadata),
		CreatedAt:        e.CreatedAt,
	}
}

func (m *FeedbackMapper) ToModel(e *entity.Feedback) *model.Feedback {
	if e == nil {
		return nil
	}

	return &model.Feedback{
		Id:               e.Id,
		RequestId:        e.RequestId,
		SessionId:        e.SessionId,
		Rating:           e.Rating,
		FeedbackType:     e.FeedbackType,
		Comment:          e.Comment,
		Sentiment:        e.Sentiment,
		ImprovementAreas: toJSON(e.ImprovementAreas),
		Strengths:        toJSON(e.Strengths),
		Metadata:         toJSON(e.Metadata),
		CreatedAt:        e.CreatedAt,
	}
}

func (m *FeedbackMapper) ToEntities(feedbacks []*model.Feedback) []*entity.Feedback {
	entities := make([]*entity.Feedback, len(feedbacks))
	for i, e := range feedbacks {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *FeedbackMapper) ToModels(feedbacks []*entity.Feedback) []*model.Feedback {
	models := make([]*model.Feedback, len(feedbacks))
	for i, e := range feedbacks {
		models[i] = m.ToModel(e)
	}
	return models
}

type LearningMetricsMapper struct{}

func NewLearningMetricsMapper() *LearningMetricsMapper {
	return &LearningMetricsMapper{}
}

func (m *LearningMetricsMapper) ToEntity(e *model.LearningMetrics) *entity.LearningMetrics {
	if e == nil {
		return nil
	}

	return &entity.LearningMetrics{
		Id:                    e.Id,
		TotalFeedbackCount:    e.TotalFeedbackCount,
		AverageRating:         e.AverageRating,
		SentimentDistribution: jsonToCountMap(e.SentimentDistribution),
		ImprovementAreas:      jsonToCountMap(e.ImprovementAreas),
		Strengths:             jsonToCountMap(e.Strengths),
		LastUpdated:           e.LastUpdated,
	}
}

func (m *LearningMetricsMapper) ToModel(e *entity.LearningMetrics) *model.LearningMetrics {
	if e == nil {
		return nil
	}

	return &model.LearningMetrics{
		Id:                    e.Id,
		TotalFeedbackCount:    e.TotalFeedbackCount,
		AverageRating:         e.AverageRating,
		SentimentDistribution: toJSON(e.SentimentDistribution),
		ImprovementAreas:      toJSON(e.ImprovementAreas),
		Strengths:             toJSON(e.Strengths),
		LastUpdated:           e.LastUpdated,
	}
}

type SuggestionMapper struct{}

func NewSuggestionMapper() *SuggestionMapper {
	return &SuggestionMapper{}
}

func (m *SuggestionMapper) ToEntity(e *model.ImprovementSuggestion) *entity.ImprovementSuggestion {
	if e == nil {
		return nil
	}

	return &entity.ImprovementSuggestion{
		Id:            e.Id,
		FeedbackId:    e.FeedbackId,
		Area:          e.Area,
		Suggestion:    e.Suggestion,
		Priority:      e.Priority,
		Implemented:   e.Implemented,
		ImplementedAt: e.ImplementedAt,
		CreatedAt:     e.CreatedAt,
	}
}

func (m *SuggestionMapper) ToModel(e *entity.ImprovementSuggestion) *model.ImprovementSuggestion {
	if e == nil {
		return nil
	}

	return &model.ImprovementSuggestion{
		Id:            e.Id,
		FeedbackId:    e.FeedbackId,
		Area:          e.Area,
		Suggestion:    e.Suggestion,
		Priority:      e.Priority,
		Implemented:   e.Implemented,
		ImplementedAt: e.ImplementedAt,
		CreatedAt:     e.CreatedAt,
	}
}

func (m *SuggestionMapper) ToEntities(suggestions []*model.ImprovementSuggestion) []*entity.ImprovementSuggestion {
	entities := make([]*entity.ImprovementSuggestion, len(suggestions))
	for i, e := range suggestions {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

type InteractionMapper struct{}

func NewInteractionMapper() *InteractionMapper {
	return &InteractionMapper{}
}

func (m *InteractionMapper) ToEntity(e *model.Interaction) *entity.Interaction {
	if e == nil {
		return nil
	}

	return &entity.Interaction{
		Id:        e.Id,
		RequestId: e.RequestId,
		SessionId: e.SessionId,
		Prompt:    e.Prompt,
		Response:  e.Response,
		Metadata:  jsonToMap(e.Metadata),
		CreatedAt: e.CreatedAt,
	}
}

func (m *InteractionMapper) ToModel(e *entity.Interaction) *model.Interaction {
	if e == nil {
		return nil
	}

	return &model.Interaction{
		Id:        e.Id,
		RequestId: e.RequestId,
		SessionId: e.SessionId,
		Prompt:    e.Prompt,
		Response:  e.Response,
		Metadata:  toJSON(e.Metadata),
		CreatedAt: e.CreatedAt,
	}
}
