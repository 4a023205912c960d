package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title,omitempty" validate:"max=255"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetTranscriptResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	SessionId uuid.UUID              `json:"session_id,omitempty"`
	Message   string                 `json:"message" validate:"required"`
	Format    string                 `json:"format,omitempty" validate:"omitempty,oneof=text markdown json code table"`
	Domain    string                 `json:"domain,omitempty"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

type SendChatResponse struct {
	SessionId uuid.UUID              `json:"session_id"`
	RequestId uuid.UUID              `json:"request_id"`
	Reply     string                 `json:"reply"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
