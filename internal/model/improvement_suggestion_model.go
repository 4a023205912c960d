package model

import (
	"time"

	"github.com/google/uuid"
)

type ImprovementSuggestion struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FeedbackId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Area          string     `gorm:"type:varchar(128)"`
	Suggestion    string     `gorm:"type:text"`
	Priority      string     `gorm:"type:varchar(16)"`
	Implemented   bool       `gorm:"default:false"`
	ImplementedAt *time.Time `gorm:""`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

func (ImprovementSuggestion) TableName() string {
	return "improvement_suggestions"
}
