package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"notedeck/internal/auth"
	"notedeck/internal/config"
	"notedeck/internal/http"
	"notedeck/internal/llm"
	"notedeck/internal/retrieval"
	"notedeck/internal/service"
	"notedeck/internal/storage"
	"notedeck/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	userRepo := storage.NewUserRepo(db)
	sessionRepo := storage.NewSessionRepo(db)
	folderRepo := storage.NewFolderRepo(db)
	noteRepo := storage.NewNoteRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Create note indexing and retrieval layers
	noteIndexer := retrieval.NewIndexer(embedder, vectorStore, cfg.QdrantCollection)
	noteRetriever := retrieval.NewRetriever(embedder, vectorStore, cfg.QdrantCollection, noteRepo)

	// Create services
	authService := auth.NewService(userRepo, sessionRepo, cfg.SessionTTL)
	userService := service.NewUserService(userRepo)
	folderService := service.NewFolderService(folderRepo, noteRepo)
	noteService := service.NewNoteService(noteRepo, folderRepo, noteIndexer)
	chatService := service.NewChatService(llmClient, noteRetriever)
	slog.Info("Services initialized")

	// Create router with dependencies
	deps := &http.Deps{
		DB:            db,
		AuthService:   authService,
		UserService:   userService,
		FolderService: folderService,
		NoteService:   noteService,
		ChatService:   chatService,
		VectorStore:   vectorStore,
		Collection:    cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
