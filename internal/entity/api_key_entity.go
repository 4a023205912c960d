package entity

import (
	"time"

	"github.com/google/uuid"
)

// ApiKey stores only the bcrypt hash of the secret. The plaintext key
// is shown once at creation.
type ApiKey struct {
	Id         uuid.UUID
	Name       string
	SecretHash string
	LastUsedAt *time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

func (k *ApiKey) Revoked() bool {
	return k.RevokedAt != nil
}
