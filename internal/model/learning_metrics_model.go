package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LearningMetrics is a single-row aggregate. Updates go through a
// row-locked transaction; see the repository implementation.
type LearningMetrics struct {
	Id                    uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TotalFeedbackCount    int64          `gorm:"default:0"`
	AverageRating         float64        `gorm:"default:0"`
	SentimentDistribution datatypes.JSON `gorm:"type:jsonb"`
	ImprovementAreas      datatypes.JSON `gorm:"type:jsonb"`
	Strengths             datatypes.JSON `gorm:"type:jsonb"`
	LastUpdated           time.Time      `gorm:"autoUpdateTime"`
}

func (LearningMetrics) TableName() string {
	return "learning_metrics"
}
