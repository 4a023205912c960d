package mapper

import (
	"time"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/model"

	"gorm.io/gorm"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(e *model.ChatSession) *entity.ChatSession {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatSession{
		Id:        e.Id,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *SessionMapper) ToModel(e *entity.ChatSession) *model.ChatSession {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ChatSession{
		Id:        e.Id,
		Title:     e.Title,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *SessionMapper) ToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, e := range sessions {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *SessionMapper) ToModels(sessions []*entity.ChatSession) []*model.ChatSession {
	models := make([]*model.ChatSession, len(sessions))
	for i, e := range sessions {
		models[i] = m.ToModel(e)
	}
	return models
}
