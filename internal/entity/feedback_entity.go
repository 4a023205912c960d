package entity

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is immutable once stored; only derived suggestions carry a
// mutable implemented flag.
type Feedback struct {
	Id               uuid.UUID
	RequestId        uuid.UUID
	SessionId        *uuid.UUID
	Rating           int
	FeedbackType     string
	Comment          string
	Sentiment        string
	ImprovementAreas []string
	Strengths        []string
	Metadata         map[string]interface{}
	CreatedAt        time.Time
}

// LearningMetrics is the singleton running aggregate over all feedback.
type LearningMetrics struct {
	Id                    uuid.UUID
	TotalFeedbackCount    int64
	AverageRating         float64
	SentimentDistribution map[string]int64
	ImprovementAreas      map[string]int64
	Strengths             map[string]int64
	LastUpdated           time.Time
}

// ImprovementSuggestion is synthesized from low-rated feedback.
type ImprovementSuggestion struct {
	Id            uuid.UUID
	FeedbackId    uuid.UUID
	Area          string
	Suggestion    string
	Priority      string
	Implemented   bool
	ImplementedAt *time.Time
	CreatedAt     time.Time
}

// Interaction is the persisted transcript record of one pipeline run.
type Interaction struct {
	Id        uuid.UUID
	RequestId uuid.UUID
	SessionId uuid.UUID
	Prompt    string
	Response  string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
