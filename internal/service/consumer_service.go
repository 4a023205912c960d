package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-orchestrator-be/internal/constant"
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/repository/specification"
	"ai-orchestrator-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

// Consume drains the interaction topic on a single goroutine so transcripts
// stay ordered per session.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishInteractionMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal interaction message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Persisting interaction for RequestId: %s", payload.RequestId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// Ensure the session row exists before attaching messages
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: payload.SessionId})
	if err != nil {
		log.Printf("[ERROR] Failed to look up session %s: %v", payload.SessionId, err)
		msg.Nack()
		return
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if session == nil {
		session = &entity.ChatSession{
			Id:        payload.SessionId,
			Title:     sessionTitle(payload.Prompt),
			CreatedAt: time.Now(),
		}
		if err := uow.SessionRepository().Create(ctx, session); err != nil {
			log.Printf("[ERROR] Failed to create session %s: %v", payload.SessionId, err)
			msg.Nack()
			return
		}
	}

	askedAt := payload.AskedAt
	if askedAt.IsZero() {
		askedAt = time.Now()
	}

	transcript := []*entity.ChatMessage{
		{
			Id:        uuid.New(),
			SessionId: payload.SessionId,
			Role:      constant.ChatMessageRoleUser,
			Content:   payload.Prompt,
			CreatedAt: askedAt,
		},
		{
			Id:        uuid.New(),
			SessionId: payload.SessionId,
			Role:      constant.ChatMessageRoleAssistant,
			Content:   payload.Response,
			CreatedAt: askedAt.Add(time.Millisecond),
		},
	}
	if err := uow.MessageRepository().CreateBulk(ctx, transcript); err != nil {
		log.Printf("[ERROR] Failed to persist transcript for %s: %v", payload.RequestId, err)
		msg.Nack()
		return
	}

	interaction := &entity.Interaction{
		Id:        uuid.New(),
		RequestId: payload.RequestId,
		SessionId: payload.SessionId,
		Prompt:    payload.Prompt,
		Response:  payload.Response,
		Metadata:  payload.Metadata,
		CreatedAt: time.Now(),
	}
	if err := uow.InteractionRepository().Create(ctx, interaction); err != nil {
		log.Printf("[ERROR] Failed to persist interaction %s: %v", payload.RequestId, err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Interaction persisted for RequestId: %s", payload.RequestId)
	msg.Ack()
}

func sessionTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return prompt
}
