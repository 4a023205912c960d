package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateApiKeyRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type CreateApiKeyResponse struct {
	Id uuid.UUID `json:"id"`
	// Key is shown once at creation and never stored in plaintext.
	Key string `json:"key"`
}

type ApiKeyResponse struct {
	Id         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Revoked    bool       `json:"revoked"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
