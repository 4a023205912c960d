package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Feedback struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	SessionId        *uuid.UUID     `gorm:"type:uuid;index"`
	Rating           int            `gorm:"not null"`
	FeedbackType     string         `gorm:"type:varchar(32)"`
	Comment          string         `gorm:"type:text"`
	Sentiment        string         `gorm:"type:varchar(16)"`
	ImprovementAreas datatypes.JSON `gorm:"type:jsonb"`
	Strengths        datatypes.JSON `gorm:"type:jsonb"`
	Metadata         datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}
