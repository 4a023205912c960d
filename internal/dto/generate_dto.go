package dto

import (
	"github.com/google/uuid"
)

type GenerateRequest struct {
	Prompt               string                 `json:"prompt" validate:"required"`
	Format               string                 `json:"format,omitempty" validate:"omitempty,oneof=text markdown json code table"`
	Domain               string                 `json:"domain,omitempty"`
	Tone                 string                 `json:"tone,omitempty"`
	CodeLanguage         string                 `json:"code_language,omitempty"`
	AddCitations         bool                   `json:"add_citations,omitempty"`
	AlwaysSearchExternal bool                   `json:"always_search_external,omitempty"`
	Model                string                 `json:"model,omitempty"`
	MaxTokens            int                    `json:"max_tokens,omitempty" validate:"omitempty,min=1,max=8192"`
	Temperature          *float64               `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`
	Options              map[string]interface{} `json:"options,omitempty"`
}

type GenerateResponse struct {
	RequestId uuid.UUID              `json:"request_id"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
