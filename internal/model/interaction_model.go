package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Interaction struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	SessionId uuid.UUID      `gorm:"type:uuid;index"`
	Prompt    string         `gorm:"type:text"`
	Response  string         `gorm:"type:text"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (Interaction) TableName() string {
	return "interactions"
}
