package service

import (
	"context"
	"testing"

	"ai-orchestrator-be/internal/config"
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/repository/memory"
	"ai-orchestrator-be/pkg/pipeline/executor"
	"ai-orchestrator-be/pkg/search"

	"github.com/google/uuid"
)

type orchestrationFixture struct {
	service   IOrchestrationService
	provider  *scriptedProvider
	messages  *fakeMessageRepo
	publisher *fakePublisher
}

func newOrchestrationFixture() *orchestrationFixture {
	provider := &scriptedProvider{response: "the backoff doubles each attempt"}
	pipelineExecutor := executor.NewPipelineExecutor(
		provider,
		nil,
		search.NewMockProvider(),
		testLogger(),
	)

	messages := newFakeMessageRepo()
	uow := &fakeUnitOfWork{
		sessions: &fakeSessionRepo{},
		messages: messages,
	}
	publisher := &fakePublisher{}

	svc := NewOrchestrationService(
		pipelineExecutor,
		&fakeFactory{uow: uow},
		memory.NewSessionRepository(),
		publisher,
		&config.Config{},
		nopLogger{},
	)

	return &orchestrationFixture{
		service:   svc,
		provider:  provider,
		messages:  messages,
		publisher: publisher,
	}
}

func TestChatReloadsTranscriptAfterCacheLoss(t *testing.T) {
	f := newOrchestrationFixture()
	sessionId := uuid.New()
	f.messages.bySession[sessionId] = []*entity.ChatMessage{
		{Id: uuid.New(), SessionId: sessionId, Role: "user", Content: "what is the retry limit?"},
		{Id: uuid.New(), SessionId: sessionId, Role: "assistant", Content: "Three attempts."},
	}

	res, err := f.service.Chat(context.Background(), &dto.SendChatRequest{
		SessionId: sessionId,
		Message:   "and the backoff?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reply == "" {
		t.Fatal("expected a reply")
	}

	if f.messages.findCalls != 1 {
		t.Fatalf("persisted transcript must be consulted exactly once, got %d lookups", f.messages.findCalls)
	}

	if len(f.provider.chats) == 0 {
		t.Fatal("reloaded transcript never reached the backend")
	}
	first := f.provider.chats[0]
	if len(first) < 3 {
		t.Fatalf("expected prior turns plus the new prompt, got %d messages", len(first))
	}
	if first[0].Content != "what is the retry limit?" || first[1].Role != "assistant" {
		t.Errorf("prior turns not forwarded in order: %+v", first[:2])
	}
}

func TestChatSecondTurnServedFromSessionCache(t *testing.T) {
	f := newOrchestrationFixture()
	sessionId := uuid.New()
	f.messages.bySession[sessionId] = []*entity.ChatMessage{
		{Id: uuid.New(), SessionId: sessionId, Role: "user", Content: "first question"},
		{Id: uuid.New(), SessionId: sessionId, Role: "assistant", Content: "first answer"},
	}

	ctx := context.Background()
	if _, err := f.service.Chat(ctx, &dto.SendChatRequest{SessionId: sessionId, Message: "turn one"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.service.Chat(ctx, &dto.SendChatRequest{SessionId: sessionId, Message: "turn two"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.messages.findCalls != 1 {
		t.Errorf("cached session must not re-read the store, got %d lookups", f.messages.findCalls)
	}
}

func TestChatNewSessionSkipsTranscriptLookup(t *testing.T) {
	f := newOrchestrationFixture()

	res, err := f.service.Chat(context.Background(), &dto.SendChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SessionId == uuid.Nil {
		t.Error("expected a generated session id")
	}
	if f.messages.findCalls != 0 {
		t.Errorf("a fresh session has no transcript to load, got %d lookups", f.messages.findCalls)
	}
	if len(f.publisher.payloads) != 1 {
		t.Errorf("expected one published interaction, got %d", len(f.publisher.payloads))
	}
}
