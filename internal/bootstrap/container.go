package bootstrap

import (
	"context"
	"log"
	"time"

	"rag-chat-be/internal/config"
	"rag-chat-be/internal/controller"
	"rag-chat-be/internal/handler"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/push"
	"rag-chat-be/internal/repository/implementation"
	"rag-chat-be/internal/repository/redisstore"
	"rag-chat-be/internal/repository/unitofwork"
	"rag-chat-be/internal/service"
	"rag-chat-be/internal/websocket"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/flow"
	"rag-chat-be/pkg/flow/classifier"
	"rag-chat-be/pkg/flow/retrieval"
	"rag-chat-be/pkg/flow/streaming"
	"rag-chat-be/pkg/llm/factory"

	pktNats "rag-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	WorkerService service.IWorkerService

	// WebSockets & Push
	ChatWsHandler *handler.ChatWsHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
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

	sessionStore := redisstore.NewSessionStore(rdb, time.Duration(cfg.Retrieval.SessionTTL)*time.Second)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_push.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	wsHub.OnDetach = func(sessionID uuid.UUID, connectionID string) {
		if err := sessionStore.ClearConnection(context.Background(), sessionID.String(), connectionID); err != nil {
			wsLogger.Warn("websocket.hub", "Failed to clear connection handle", map[string]interface{}{
				"session_id": sessionID.String(),
				"error":      err.Error(),
			})
		}
	}
	go wsHub.Run()

	sender := push.NewHubSender(wsHub, sessionStore, wsLogger)

	// 5. Workflow Stages
	faqRepo := implementation.NewFaqRepository(db)
	docRepo := implementation.NewDocumentRepository(db)
	configRepo := implementation.NewRetrievalConfigRepository(db)
	turnRepo := implementation.NewChatTurnRepository(db)

	classifierStage := classifier.NewClassifier(embeddingProvider, faqRepo, cfg.Retrieval.FaqMatchThreshold, sysLogger)
	retrievalStage := retrieval.NewRetrieval(embeddingProvider, docRepo, configRepo, sysLogger)
	streamingStage := streaming.NewStreaming(sender, llmProvider, turnRepo, sysLogger)

	chatWorkflow := flow.NewWorkflow(
		classifierStage,
		retrievalStage,
		streamingStage,
		sessionStore,
		time.Duration(cfg.Retrieval.WorkflowTimeout)*time.Second,
		sysLogger,
	)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.MessageTopic, pubSub)
	workerService := service.NewWorkerService(
		pubSub,
		cfg.App.MessageTopic,
		chatWorkflow,
		uowFactory,
		sender,
		natsPub,
		sysLogger,
	)

	chatService := service.NewChatService(uowFactory, publisherService, sessionStore, sysLogger)

	// Lifecycle event audit trail (worker)
	if natsSub != nil {
		auditService := service.NewEventAuditService(natsSub, sysLogger)
		go func() {
			if err := auditService.Start(); err != nil {
				log.Printf("[WARN] Failed to start event audit service: %v", err)
			}
		}()
	}

	// Handler
	wsHandler := handler.NewChatWsHandler(wsHub, sessionStore, wsLogger)

	// 7. Controllers
	return &Container{
		ChatController: controller.NewChatController(chatService),
		WorkerService:  workerService,
		ChatWsHandler:  wsHandler,
		WebSocketHub:   wsHub,
	}
}
