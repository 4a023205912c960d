package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishInteractionMessage is the payload persisted by the transcript consumer.
type PublishInteractionMessage struct {
	RequestId uuid.UUID              `json:"request_id"`
	SessionId uuid.UUID              `json:"session_id"`
	Prompt    string                 `json:"prompt"`
	Response  string                 `json:"response"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	AskedAt   time.Time              `json:"asked_at"`
}
