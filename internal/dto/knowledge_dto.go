package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentRequest struct {
	Title    string                 `json:"title" validate:"required,max=255"`
	Content  string                 `json:"content" validate:"required"`
	Source   string                 `json:"source,omitempty" validate:"max=512"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type IngestDocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	ChunkCount int       `json:"chunk_count"`
}

type DocumentResponse struct {
	Id        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	Source    string                 `json:"source,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type SearchKnowledgeRequest struct {
	Query     string  `json:"query" validate:"required"`
	Limit     int     `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	Threshold float64 `json:"threshold,omitempty" validate:"omitempty,min=0,max=1"`
}

type SearchKnowledgeResponseItem struct {
	DocumentId uuid.UUID `json:"document_id"`
	Chunk      string    `json:"chunk"`
	Similarity float64   `json:"similarity"`
}
