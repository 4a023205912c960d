package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-orchestrator-be/internal/config"
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/internal/pkg/logger"
	"ai-orchestrator-be/internal/repository/memory"
	"ai-orchestrator-be/internal/repository/specification"
	"ai-orchestrator-be/internal/repository/unitofwork"
	"ai-orchestrator-be/pkg/llm"
	"ai-orchestrator-be/pkg/pipeline"
	"ai-orchestrator-be/pkg/pipeline/executor"

	"github.com/google/uuid"
)

const maxHistoryMessages = 20

type IOrchestrationService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetTranscript(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetTranscriptResponse, error)
	Chat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error)
}

type orchestrationService struct {
	pipeline         *executor.PipelineExecutor
	uowFactory       unitofwork.RepositoryFactory
	sessions         *memory.SessionRepository
	publisherService IPublisherService
	cfg              *config.Config
	logger           logger.ILogger
}

func NewOrchestrationService(
	pipelineExecutor *executor.PipelineExecutor,
	uowFactory unitofwork.RepositoryFactory,
	sessions *memory.SessionRepository,
	publisherService IPublisherService,
	cfg *config.Config,
	sysLogger logger.ILogger,
) IOrchestrationService {
	return &orchestrationService{
		pipeline:         pipelineExecutor,
		uowFactory:       uowFactory,
		sessions:         sessions,
		publisherService: publisherService,
		cfg:              cfg,
		logger:           sysLogger,
	}
}

func (s *orchestrationService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	state := &memory.SessionState{
		Id:    uuid.New(),
		Title: req.Title,
	}
	s.sessions.Save(state)
	return &dto.CreateSessionResponse{Id: state.Id}, nil
}

func (s *orchestrationService) GetSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, session := range sessions {
		res[i] = &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return res, nil
}

func (s *orchestrationService) GetTranscript(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetTranscriptResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetTranscriptResponse, len(messages))
	for i, m := range messages {
		res[i] = &dto.GetTranscriptResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return res, nil
}

func (s *orchestrationService) Chat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	sessionId := req.SessionId
	if sessionId == uuid.Nil {
		sessionId = uuid.New()
	}

	state, found := s.sessions.Get(sessionId)
	if !found {
		state = &memory.SessionState{
			Id:    sessionId,
			Title: sessionTitle(req.Message),
		}
		// A known session that fell out of the cache still has its
		// transcript in the store; a freshly minted id has nothing to load.
		if req.SessionId != uuid.Nil {
			state.History = s.loadHistory(ctx, sessionId)
		}
	}

	rc := s.newRequestContext()
	rc.SessionId = sessionId
	rc.History = state.History
	if req.Format != "" {
		rc.Format = req.Format
	}
	if req.Domain != "" {
		rc.Domain = req.Domain
	}
	credential := extractCredential(req.Options, rc)

	askedAt := time.Now()
	result, err := s.pipeline.Execute(ctx, req.Message, rc, nil, credential)
	if err != nil {
		return nil, err
	}

	state.History = append(state.History,
		llm.Message{Role: "user", Content: req.Message},
		llm.Message{Role: "assistant", Content: result.Content},
	)
	if len(state.History) > maxHistoryMessages {
		state.History = state.History[len(state.History)-maxHistoryMessages:]
	}
	s.sessions.Save(state)

	s.publishInteraction(ctx, rc.RequestId, sessionId, req.Message, result.Content, result.Metadata, askedAt)

	return &dto.SendChatResponse{
		SessionId: sessionId,
		RequestId: rc.RequestId,
		Reply:     result.Content,
		Metadata:  result.Metadata,
	}, nil
}

func (s *orchestrationService) Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	rc := s.newRequestContext()
	if req.Format != "" {
		rc.Format = req.Format
	}
	if req.Domain != "" {
		rc.Domain = req.Domain
	}
	rc.Tone = req.Tone
	rc.CodeLanguage = req.CodeLanguage
	rc.AddCitations = req.AddCitations
	rc.AlwaysSearchExternal = req.AlwaysSearchExternal
	credential := extractCredential(req.Options, rc)

	var override *pipeline.LLMConfig
	if req.Model != "" || req.MaxTokens > 0 || req.Temperature != nil {
		override = &pipeline.LLMConfig{
			Model:       req.Model,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		}
	}

	askedAt := time.Now()
	result, err := s.pipeline.Execute(ctx, req.Prompt, rc, override, credential)
	if err != nil {
		return nil, err
	}

	s.publishInteraction(ctx, rc.RequestId, uuid.New(), req.Prompt, result.Content, result.Metadata, askedAt)

	return &dto.GenerateResponse{
		RequestId: rc.RequestId,
		Content:   result.Content,
		Metadata:  result.Metadata,
	}, nil
}

// loadHistory rebuilds the in-memory transcript from the persisted
// messages. Needed after a cache eviction or a restart, otherwise a
// continuing conversation starts from a blank history.
func (s *orchestrationService) loadHistory(ctx context.Context, sessionId uuid.UUID) []llm.Message {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindBySessionId(ctx, sessionId)
	if err != nil {
		s.logger.Warn("orchestration", "failed to reload transcript", map[string]interface{}{
			"session_id": sessionId.String(),
			"error":      err.Error(),
		})
		return nil
	}

	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	return history
}

func (s *orchestrationService) newRequestContext() *pipeline.RequestContext {
	rc := pipeline.NewRequestContext()
	p := s.cfg.Pipeline
	if p.VectorSearchLimit > 0 {
		rc.VectorSearchLimit = p.VectorSearchLimit
	}
	if p.VectorSearchThreshold > 0 {
		rc.VectorSearchThreshold = p.VectorSearchThreshold
	}
	if p.ExternalSearchLimit > 0 {
		rc.ExternalSearchLimit = p.ExternalSearchLimit
	}
	if p.SufficientConfidence > 0 {
		rc.SufficientConfidence = p.SufficientConfidence
	}
	if p.MinRelevantInfo > 0 {
		rc.MinRelevantInfo = p.MinRelevantInfo
	}
	if p.SkipRewriteBelow > 0 {
		rc.SkipRewriteBelow = p.SkipRewriteBelow
	}
	return rc
}

func (s *orchestrationService) publishInteraction(
	ctx context.Context,
	requestId, sessionId uuid.UUID,
	prompt, response string,
	metadata map[string]interface{},
	askedAt time.Time,
) {
	payload := dto.PublishInteractionMessage{
		RequestId: requestId,
		SessionId: sessionId,
		Prompt:    prompt,
		Response:  response,
		Metadata:  metadata,
		AskedAt:   askedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("orchestration", "failed to marshal interaction payload", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, data); err != nil {
		s.logger.Error("orchestration", "failed to publish interaction", map[string]interface{}{"error": err.Error()})
	}
}

// extractCredential pulls a caller-supplied backend key out of the options
// map. The key is call-scoped only and never copied into the context.
func extractCredential(options map[string]interface{}, rc *pipeline.RequestContext) string {
	var credential string
	for k, v := range options {
		if k == "credential" {
			if str, ok := v.(string); ok {
				credential = str
			}
			continue
		}
		rc.Options[k] = v
	}
	return credential
}
