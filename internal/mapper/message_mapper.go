package mapper

import (
	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(e *model.ChatMessage) *entity.ChatMessage {
	if e == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:        e.Id,
		SessionId: e.SessionId,
		Role:      e.Role,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
}

func (m *MessageMapper) ToModel(e *entity.ChatMessage) *model.ChatMessage {
	if e == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:        e.Id,
		SessionId: e.SessionId,
		Role:      e.Role,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
}

func (m *MessageMapper) ToEntities(messages []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(messages))
	for i, e := range messages {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *MessageMapper) ToModels(messages []*entity.ChatMessage) []*model.ChatMessage {
	models := make([]*model.ChatMessage, len(messages))
	for i, e := range messages {
		models[i] = m.ToModel(e)
	}
	return models
}
