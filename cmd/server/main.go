package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ragchat/internal/ai"
	"ragchat/internal/app"
	"ragchat/internal/bootstrap"
	"ragchat/internal/cache"
	"ragchat/internal/platform/rabbitmq"
	"ragchat/internal/repository"
	httptransport "ragchat/internal/transport/http"
)

func main() {
	ctx := context.Background()

	boot, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := boot.Close(); err != nil {
			log.Printf("close resources failed: %v", err)
		}
	}()

	cfg := boot.Config
	geminiClient := ai.NewGeminiClient(ai.Config{
		BaseURL:        cfg.Gemini.BaseURL,
		APIKey:         cfg.Gemini.APIKey,
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
		ChatModel:      cfg.Gemini.ChatModel,
		Timeout:        time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
	})

	docRepo := repository.NewDocumentRepository(boot.MySQL)
	segRepo := repository.NewSegmentRepository(boot.MySQL)
	embCache := cache.NewEmbeddingCache(
		boot.Redis,
		cfg.Gemini.EmbeddingModel,
		time.Duration(cfg.Redis.EmbeddingTTLSeconds)*time.Second,
	)
	queryLogs := rabbitmq.NewQueryLogPublisher(boot.MQConn, cfg.RabbitMQ.QueryLogQueue)

	ragService, err := app.NewRAGService(docRepo, segRepo, geminiClient, geminiClient, embCache, queryLogs, cfg.RAG)
	if err != nil {
		log.Fatalf("build rag service failed: %v", err)
	}
	docService := app.NewDocumentService(docRepo)

	router := httptransport.NewRouter(boot, ragService, docService)
	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}
}
