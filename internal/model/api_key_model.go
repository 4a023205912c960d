package model

import (
	"time"

	"github.com/google/uuid"
)

type ApiKey struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string     `gorm:"type:varchar(128)"`
	SecretHash string     `gorm:"type:varchar(128);not null"`
	LastUsedAt *time.Time `gorm:""`
	RevokedAt  *time.Time `gorm:""`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
}

func (ApiKey) TableName() string {
	return "api_keys"
}
