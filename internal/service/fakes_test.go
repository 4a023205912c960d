package service

import (
	"context"
	"log"
	"os"

	"ai-orchestrator-be/internal/entity"
	"ai-orchestrator-be/internal/repository/contract"
	"ai-orchestrator-be/internal/repository/specification"
	"ai-orchestrator-be/internal/repository/unitofwork"
	"ai-orchestrator-be/pkg/embedding"
	"ai-orchestrator-be/pkg/llm"

	pktNats "ai-orchestrator-be/pkg/nats"

	"github.com/google/uuid"
)

// nopLogger satisfies logger.ILogger without touching the filesystem.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type scriptedProvider struct {
	response string
	err      error
	prompts  []string
	chats    [][]llm.Message
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.chats = append(p.chats, history)
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Content
	}
	return p.Generate(ctx, last, opts...)
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", log.LstdFlags)
}

type fakeSubscriber struct {
	handlers map[string]pktNats.EventHandler
	durables map[string]string
	err      error
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		handlers: map[string]pktNats.EventHandler{},
		durables: map[string]string{},
	}
}

func (s *fakeSubscriber) Subscribe(subject string, durableName string, handler pktNats.EventHandler) error {
	if s.err != nil {
		return s.err
	}
	s.handlers[subject] = handler
	s.durables[subject] = durableName
	return nil
}

type fakeMailer struct {
	lowRatingAlerts  []int
	suggestionAreas  []string
	suggestionBodies []string
	recipients       []string
	sendErr          error
}

func (m *fakeMailer) SendLowRatingAlert(toEmail string, rating int, feedbackType, comment string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.recipients = append(m.recipients, toEmail)
	m.lowRatingAlerts = append(m.lowRatingAlerts, rating)
	return nil
}

func (m *fakeMailer) SendSuggestionAlert(toEmail string, area, priority, description string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.recipients = append(m.recipients, toEmail)
	m.suggestionAreas = append(m.suggestionAreas, area)
	m.suggestionBodies = append(m.suggestionBodies, description)
	return nil
}

type fakePublisher struct {
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeSessionRepo struct {
	sessions []*entity.ChatSession
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.sessions = append(r.sessions, session)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error { return nil }

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	if len(r.sessions) == 0 {
		return nil, nil
	}
	return r.sessions[0], nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return r.sessions, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sessions)), nil
}

// fakeMessageRepo serves a pre-seeded transcript and counts lookups so
// tests can tell whether the persisted history was consulted.
type fakeMessageRepo struct {
	bySession map[uuid.UUID][]*entity.ChatMessage
	findCalls int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{bySession: map[uuid.UUID][]*entity.ChatMessage{}}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.bySession[message.SessionId] = append(r.bySession[message.SessionId], message)
	return nil
}

func (r *fakeMessageRepo) CreateBulk(ctx context.Context, messages []*entity.ChatMessage) error {
	for _, m := range messages {
		r.bySession[m.SessionId] = append(r.bySession[m.SessionId], m)
	}
	return nil
}

func (r *fakeMessageRepo) FindBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	r.findCalls++
	return r.bySession[sessionId], nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var res []*entity.ChatMessage
	for _, messages := range r.bySession {
		res = append(res, messages...)
	}
	return res, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	messages, _ := r.FindAll(ctx)
	return int64(len(messages)), nil
}

type fakeFeedbackRepo struct {
	created   []*entity.Feedback
	createErr error
}

func (r *fakeFeedbackRepo) Create(ctx context.Context, feedback *entity.Feedback) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, feedback)
	return nil
}

func (r *fakeFeedbackRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feedback, error) {
	if len(r.created) == 0 {
		return nil, nil
	}
	return r.created[0], nil
}

func (r *fakeFeedbackRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error) {
	return r.created, nil
}

func (r *fakeFeedbackRepo) FindByRequestId(ctx context.Context, requestId uuid.UUID) ([]*entity.Feedback, error) {
	var res []*entity.Feedback
	for _, f := range r.created {
		if f.RequestId == requestId {
			res = append(res, f)
		}
	}
	return res, nil
}

func (r *fakeFeedbackRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.created)), nil
}

type fakeMetricsRepo struct {
	applied  []*entity.Feedback
	applyErr error
	current  *entity.LearningMetrics
}

func (r *fakeMetricsRepo) Get(ctx context.Context) (*entity.LearningMetrics, error) {
	if r.current != nil {
		return r.current, nil
	}
	return &entity.LearningMetrics{
		SentimentDistribution: map[string]int64{},
		ImprovementAreas:      map[string]int64{},
		Strengths:             map[string]int64{},
	}, nil
}

func (r *fakeMetricsRepo) ApplyFeedback(ctx context.Context, feedback *entity.Feedback) (*entity.LearningMetrics, error) {
	if r.applyErr != nil {
		return nil, r.applyErr
	}
	r.applied = append(r.applied, feedback)
	return r.Get(ctx)
}

type fakeSuggestionRepo struct {
	created     []*entity.ImprovementSuggestion
	implemented []uuid.UUID
}

func (r *fakeSuggestionRepo) Create(ctx context.Context, suggestion *entity.ImprovementSuggestion) error {
	r.created = append(r.created, suggestion)
	return nil
}

func (r *fakeSuggestionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ImprovementSuggestion, error) {
	if len(r.created) == 0 {
		return nil, nil
	}
	return r.created[0], nil
}

func (r *fakeSuggestionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ImprovementSuggestion, error) {
	return r.created, nil
}

func (r *fakeSuggestionRepo) MarkImplemented(ctx context.Context, id uuid.UUID) error {
	r.implemented = append(r.implemented, id)
	return nil
}

type fakeApiKeyRepo struct {
	keys      map[uuid.UUID]*entity.ApiKey
	touched   []uuid.UUID
	createErr error
}

func newFakeApiKeyRepo() *fakeApiKeyRepo {
	return &fakeApiKeyRepo{keys: map[uuid.UUID]*entity.ApiKey{}}
}

func (r *fakeApiKeyRepo) Create(ctx context.Context, key *entity.ApiKey) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.keys[key.Id] = key
	return nil
}

func (r *fakeApiKeyRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ApiKey, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if key, found := r.keys[byID.ID]; found {
				return key, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeApiKeyRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ApiKey, error) {
	res := make([]*entity.ApiKey, 0, len(r.keys))
	for _, key := range r.keys {
		res = append(res, key)
	}
	return res, nil
}

func (r *fakeApiKeyRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	if key, found := r.keys[id]; found {
		now := key.CreatedAt
		key.RevokedAt = &now
	}
	return nil
}

func (r *fakeApiKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	r.touched = append(r.touched, id)
	return nil
}

type fakeDocumentRepo struct {
	documents []*entity.Document
	deleted   []uuid.UUID
}

func (r *fakeDocumentRepo) Create(ctx context.Context, document *entity.Document) error {
	r.documents = append(r.documents, document)
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, document *entity.Document) error { return nil }

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	if len(r.documents) == 0 {
		return nil, nil
	}
	return r.documents[0], nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return r.documents, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.documents)), nil
}

type fakeEmbeddingRepo struct {
	embeddings     []*entity.DocumentEmbedding
	deletedDocs    []uuid.UUID
	scoredResults  []*contract.ScoredDocumentEmbedding
	searchRequests []int
}

func (r *fakeEmbeddingRepo) Create(ctx context.Context, embedding *entity.DocumentEmbedding) error {
	r.embeddings = append(r.embeddings, embedding)
	return nil
}

func (r *fakeEmbeddingRepo) CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error {
	r.embeddings = append(r.embeddings, embeddings...)
	return nil
}

func (r *fakeEmbeddingRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeEmbeddingRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.deletedDocs = append(r.deletedDocs, documentId)
	return nil
}

func (r *fakeEmbeddingRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentEmbedding, error) {
	return nil, nil
}

func (r *fakeEmbeddingRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentEmbedding, error) {
	return r.embeddings, nil
}

func (r *fakeEmbeddingRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.embeddings)), nil
}

func (r *fakeEmbeddingRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredDocumentEmbedding, error) {
	r.searchRequests = append(r.searchRequests, limit)
	return r.scoredResults, nil
}

// stubEmbedder returns a fixed vector and records the texts it embedded.
type stubEmbedder struct {
	texts []string
}

func (e *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.texts = append(e.texts, text)
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

// fakeUnitOfWork wires the fake repositories behind the production
// interface. Accessors for repositories a test never touches return nil.
type fakeUnitOfWork struct {
	sessions    *fakeSessionRepo
	messages    *fakeMessageRepo
	feedback    *fakeFeedbackRepo
	metrics     *fakeMetricsRepo
	suggestions *fakeSuggestionRepo
	apiKeys     *fakeApiKeyRepo
	documents   *fakeDocumentRepo
	embeddings  *fakeEmbeddingRepo

	begun      int
	committed  int
	rolledBack int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { u.begun++; return nil }
func (u *fakeUnitOfWork) Commit() error                   { u.committed++; return nil }
func (u *fakeUnitOfWork) Rollback() error                 { u.rolledBack++; return nil }

func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository { return u.sessions }
func (u *fakeUnitOfWork) MessageRepository() contract.MessageRepository { return u.messages }
func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.documents
}
func (u *fakeUnitOfWork) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return u.embeddings
}
func (u *fakeUnitOfWork) FeedbackRepository() contract.FeedbackRepository { return u.feedback }
func (u *fakeUnitOfWork) LearningMetricsRepository() contract.LearningMetricsRepository {
	return u.metrics
}
func (u *fakeUnitOfWork) SuggestionRepository() contract.SuggestionRepository { return u.suggestions }
func (u *fakeUnitOfWork) InteractionRepository() contract.InteractionRepository {
	return nil
}
func (u *fakeUnitOfWork) ApiKeyRepository() contract.ApiKeyRepository { return u.apiKeys }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}
