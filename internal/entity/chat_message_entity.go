package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one role-tagged entry of a session transcript.
// Transcripts are append-only.
type ChatMessage struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string // "user", "assistant", "system"
	Content   string
	CreatedAt time.Time
}
