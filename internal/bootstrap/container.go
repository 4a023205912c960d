package bootstrap

import (
	"context"
	"log"

	"ai-orchestrator-be/internal/config"
	"ai-orchestrator-be/internal/controller"
	"ai-orchestrator-be/internal/pkg/logger"
	"ai-orchestrator-be/internal/pkg/mailer"
	"ai-orchestrator-be/internal/repository/memory"
	"ai-orchestrator-be/internal/repository/unitofwork"
	"ai-orchestrator-be/internal/service"
	"ai-orchestrator-be/pkg/embedding"
	"ai-orchestrator-be/pkg/llm/factory"
	"ai-orchestrator-be/pkg/pipeline/executor"
	"ai-orchestrator-be/pkg/pipeline/learning"
	"ai-orchestrator-be/pkg/search"
	"ai-orchestrator-be/pkg/search/google"

	pktNats "ai-orchestrator-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	GenerateController  controller.IGenerateController
	FeedbackController  controller.IFeedbackController
	KnowledgeController controller.IKnowledgeController
	AuthController      controller.IAuthController

	// Middleware dependencies
	ApiKeyService service.IApiKeyService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Embedding.Provider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Embedding.BaseURL,
			cfg.Embedding.Model,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Embedding.Model)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Embedding.BaseURL,
			cfg.Embedding.APIKey,
			cfg.Embedding.Model,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Embedding.Model)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.LLM.Provider,
		cfg.LLM.Model,
		cfg.LLM.BaseURL,
		cfg.LLM.APIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.LLM.Provider, cfg.LLM.Model)

	var searchProvider search.Provider
	if cfg.Search.Provider == "google" {
		searchProvider = google.NewGoogleProvider(cfg.Search.GoogleAPIKey, cfg.Search.GoogleEngineId)
		log.Printf("[INFO] Using Search Provider: GOOGLE")
	} else {
		searchProvider = search.NewMockProvider()
		log.Printf("[INFO] Using Search Provider: MOCK")
	}

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// 4. Pipeline
	vectorSearcher := service.NewVectorSearchService(uowFactory, embeddingProvider)
	pipelineLogger := log.Default()
	pipelineExecutor := executor.NewPipelineExecutor(
		llmProvider,
		vectorSearcher,
		searchProvider,
		pipelineLogger,
	)
	suggestionGen := learning.NewSuggestionGenerator(llmProvider, pipelineLogger)
	textAnalyzer := learning.NewTextAnalyzer(llmProvider, pipelineLogger)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Pipeline.InteractionTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Pipeline.InteractionTopic,
		uowFactory,
	)

	orchestrationService := service.NewOrchestrationService(
		pipelineExecutor,
		uowFactory,
		sessionRepo,
		publisherService,
		cfg,
		sysLogger,
	)
	feedbackService := service.NewFeedbackService(
		uowFactory,
		suggestionGen,
		textAnalyzer,
		rdb,
		natsPub,
		emailService,
		cfg,
		sysLogger,
	)
	knowledgeService := service.NewKnowledgeService(uowFactory, embeddingProvider, sysLogger)
	apiKeyService := service.NewApiKeyService(uowFactory, rdb, sysLogger)

	if natsSub != nil {
		eventMonitor := service.NewEventMonitorService(
			natsSub,
			emailService,
			cfg.SMTP.AlertRecipient,
			sysLogger,
		)
		if err := eventMonitor.Start(); err != nil {
			log.Printf("[WARN] Failed to start event monitor: %v", err)
		}
	}

	// 6. Controllers
	return &Container{
		ChatController:      controller.NewChatController(orchestrationService),
		GenerateController:  controller.NewGenerateController(orchestrationService),
		FeedbackController:  controller.NewFeedbackController(feedbackService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		AuthController:      controller.NewAuthController(apiKeyService),

		ApiKeyService: apiKeyService,

		ConsumerService: consumerService,
	}
}
