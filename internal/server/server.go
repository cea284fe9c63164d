package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"secdocs/internal/config"
	"secdocs/internal/db"
	"secdocs/internal/handlers"
	"secdocs/internal/repositories"
	"secdocs/internal/routes"
	"secdocs/internal/services"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer wires configuration, stores, services and handlers into a ready
// http.Server. It fails hard on unreachable stores; a chat assistant without
// its document store has nothing useful to serve.
func NewServer(cfg *config.Config) (*http.Server, error) {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	docRepo, convRepo, err := initializeRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	llm := services.NewOpenAIClient(cfg.OpenAI)

	extractor := services.NewKeywordExtractor()
	classifier := services.NewClassifierService(llm, extractor, log.New(os.Stdout, "[CLASSIFIER] ", log.LstdFlags))
	improver := services.NewQueryImprover(llm)
	retrieval := services.NewRetrievalService(llm, improver, docRepo, log.New(os.Stdout, "[RETRIEVAL] ", log.LstdFlags))
	answers := services.NewAnswerService(llm, log.New(os.Stdout, "[ANSWER] ", log.LstdFlags))

	chatLogger := log.New(os.Stdout, "[CHAT] ", log.LstdFlags)
	chatService := services.NewChatService(retrieval, answers, convRepo, &services.LogTracer{Logger: chatLogger}, chatLogger, cfg.Retrieval.TopK)
	documentService := services.NewDocumentService(llm, classifier, docRepo, log.New(os.Stdout, "[DOCUMENTS] ", log.LstdFlags))
	conversationService := services.NewConversationService(convRepo, log.New(os.Stdout, "[CONVERSATIONS] ", log.LstdFlags))

	h := &routes.Handlers{
		Health: handlers.HealthCheckHandler,
		Home:   handlers.HomeHandler,

		ChatHandler:         handlers.NewChatHandler(chatService, chatLogger),
		DocHandler:          handlers.NewDocumentHandler(documentService, logger),
		ConversationHandler: handlers.NewConversationHandler(conversationService, logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	logger.Printf("✅ Services initialized (store backend: %s, top-k: %d)", cfg.StoreBackend, cfg.Retrieval.TopK)

	return &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: corsMiddleware(router),
	}, nil
}

// initializeRepositories connects to Redis (always, for conversations) and,
// depending on STORE_BACKEND, picks the document store implementation.
func initializeRepositories(cfg *config.Config, logger *log.Logger) (repositories.DocumentRepository, repositories.ConversationRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)
	redisClient, err := db.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	if err := redisClient.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("redis connection failed (hint: docker run -d -p 6379:6379 redis:7-alpine): %w", err)
	}
	logger.Println("✅ Redis connected successfully")

	convRepo := repositories.NewRedisConversationRepository(redisClient.GetClient())

	var docRepo repositories.DocumentRepository
	switch cfg.StoreBackend {
	case config.StoreBackendChroma:
		logger.Printf("Connecting to ChromaDB: %s:%d", cfg.Chroma.Host, cfg.Chroma.Port)
		chromaClient := db.NewChromaDBClient(cfg.Chroma)
		if err := chromaClient.Heartbeat(ctx); err != nil {
			return nil, nil, fmt.Errorf("chromadb connection failed (hint: docker run -d -p 8000:8000 chromadb/chroma): %w", err)
		}
		logger.Println("✅ ChromaDB connected successfully")
		docRepo = repositories.NewChromaDocumentRepository(chromaClient, cfg.Collection, cfg.Retrieval.EmbeddingDim)
	case config.StoreBackendRedis:
		docRepo = repositories.NewRedisDocumentRepository(redisClient.GetClient(), cfg.Retrieval.EmbeddingDim)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	logger.Println("✅ All repositories initialized successfully")
	return docRepo, convRepo, nil
}
