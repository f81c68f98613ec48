package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/puran2003gupta/ragassist/internal/api"
	"github.com/puran2003gupta/ragassist/internal/chunker"
	"github.com/puran2003gupta/ragassist/internal/config"
	"github.com/puran2003gupta/ragassist/internal/embedding"
	"github.com/puran2003gupta/ragassist/internal/extract"
	"github.com/puran2003gupta/ragassist/internal/llm"
	"github.com/puran2003gupta/ragassist/internal/repository"
	"github.com/puran2003gupta/ragassist/internal/retrieve"
	"github.com/puran2003gupta/ragassist/internal/service"
	"github.com/puran2003gupta/ragassist/internal/vectorstore"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Conversation database
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	convRepo := repository.NewConversationRepository(db)

	// Vector store
	store, err := vectorstore.New(cfg.Vector.Dir)
	if err != nil {
		logger.Fatal("Failed to initialize vector store", zap.Error(err))
	}
	defer store.Close()

	// Embedder
	embedder, err := embedding.New(ctx, &embedding.Config{
		Provider: embedding.Provider(cfg.Embedding.Provider),
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize embedder", zap.Error(err))
	}

	// Generation backend, resolved once for the process lifetime
	generator := llm.Resolve(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	}, logger)

	// Chunker
	splitter, err := chunker.NewSplitter(cfg.Chunk.Size, cfg.Chunk.Overlap)
	if err != nil {
		logger.Fatal("Invalid chunking configuration", zap.Error(err))
	}

	// Services
	retriever := retrieve.New(embedder, store)
	askService := service.NewAskService(cfg, retriever, generator, convRepo, logger)
	ingestService := service.NewIngestService(cfg, splitter, embedder, store,
		extract.NewWebExtractor(20*time.Second), logger)

	// Setup router
	router := api.SetupRouter(askService, ingestService, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting ragassist server", zap.String("address", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
