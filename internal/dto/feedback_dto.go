package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitFeedbackRequest struct {
	RequestId    uuid.UUID              `json:"request_id" validate:"required"`
	SessionId    *uuid.UUID             `json:"session_id,omitempty"`
	Rating       int                    `json:"rating" validate:"required"`
	FeedbackType string                 `json:"feedback_type,omitempty" validate:"omitempty,oneof=accuracy relevance clarity completeness"`
	Comment      string                 `json:"comment,omitempty" validate:"max=4000"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

type FeedbackResponse struct {
	Id               uuid.UUID `json:"id"`
	RequestId        uuid.UUID `json:"request_id"`
	Rating           int       `json:"rating"`
	FeedbackType     string    `json:"feedback_type,omitempty"`
	Comment          string    `json:"comment,omitempty"`
	Sentiment        string    `json:"sentiment"`
	ImprovementAreas []string  `json:"improvement_areas,omitempty"`
	Strengths        []string  `json:"strengths,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type LearningMetricsResponse struct {
	TotalFeedbackCount    int64            `json:"total_feedback_count"`
	AverageRating         float64          `json:"average_rating"`
	SentimentDistribution map[string]int64 `json:"sentiment_distribution"`
	ImprovementAreas      map[string]int64 `json:"improvement_areas"`
	Strengths             map[string]int64 `json:"strengths"`
	LastUpdated           time.Time        `json:"last_updated"`
}

type SuggestionResponse struct {
	Id            uuid.UUID  `json:"id"`
	FeedbackId    uuid.UUID  `json:"feedback_id"`
	Area          string     `json:"area"`
	Suggestion    string     `json:"suggestion"`
	Priority      string     `json:"priority"`
	Implemented   bool       `json:"implemented"`
	ImplementedAt *time.Time `json:"implemented_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
