package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one ingested knowledge source.
type Document struct {
	Id        uuid.UUID
	Title     string
	Content   string
	Source    string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// DocumentEmbedding is one embedded chunk of a document.
type DocumentEmbedding struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	Chunk          string
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
