package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dealscope/backend/config"
	httpDelivery "github.com/dealscope/backend/internal/delivery/http"
	"github.com/dealscope/backend/internal/domain"
	"github.com/dealscope/backend/internal/infrastructure/embedding"
	"github.com/dealscope/backend/internal/infrastructure/memstore"
	"github.com/dealscope/backend/internal/infrastructure/qdrant"
	"github.com/dealscope/backend/internal/infrastructure/textgen"
	"github.com/dealscope/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting DealScope Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Vector Store: %s", cfg.VectorStore.Type)

	debug := cfg.Server.Environment == "development"

	// Initialize infrastructure dependencies
	var store domain.DealStore
	switch cfg.VectorStore.Type {
	case "memory":
		store = memstore.NewStore()
		log.Printf("Using in-memory deal store")
	default:
		qdrantClient := qdrant.NewClient(qdrant.Config{
			URL:       cfg.VectorStore.URL,
			APIKey:    cfg.VectorStore.APIKey,
			Dimension: cfg.VectorStore.Dimension,
			Timeout:   cfg.VectorStore.Timeout,
		})
		qdrantClient.SetDebug(debug)
		store = qdrantClient
		log.Printf("Qdrant configured: %s (dim=%d)", cfg.VectorStore.URL, cfg.VectorStore.Dimension)
	}

	embedClient := embedding.NewClient(embedding.Config{
		BaseURL:           cfg.Embedding.BaseURL,
		APIKey:            cfg.Embedding.APIKey,
		Model:             cfg.Embedding.Model,
		Timeout:           cfg.Embedding.Timeout,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
	embedClient.SetDebug(debug)
	log.Printf("Embeddings configured: model=%s", cfg.Embedding.Model)

	// Narration is optional: without an API key the chat endpoint still
	// returns structured answers, just without prose.
	var generator domain.TextGenerator
	if cfg.TextGen.APIKey != "" {
		textgenClient := textgen.NewClient(textgen.Config{
			BaseURL:           cfg.TextGen.BaseURL,
			APIKey:            cfg.TextGen.APIKey,
			Model:             cfg.TextGen.Model,
			MaxTokens:         cfg.TextGen.MaxTokens,
			Temperature:       cfg.TextGen.Temperature,
			Timeout:           cfg.TextGen.Timeout,
			RequestsPerSecond: cfg.TextGen.RequestsPerSecond,
		})
		textgenClient.SetDebug(debug)
		generator = textgenClient
		log.Printf("Text generation configured: model=%s", cfg.TextGen.Model)
	} else {
		log.Printf("WARNING: text generation key not configured, narration disabled")
	}

	// Initialize usecase layer
	indexer := usecase.NewIndexer(store, embedClient)
	comparisonService := usecase.NewComparisonService(store, embedClient, usecase.ComparisonConfig{
		TopKPerStore: cfg.Search.TopKPerStore,
		ScoreEpsilon: cfg.Search.ScoreEpsilon,
		Debug:        cfg.Search.Debug,
	})
	queryService := usecase.NewQueryService(store, embedClient, comparisonService, usecase.QueryConfig{
		TopKPerStore: cfg.Search.TopKPerStore,
		GlobalTopN:   cfg.Search.GlobalTopN,
		Debug:        cfg.Search.Debug,
	})
	composer := usecase.NewComposer(generator, cfg.Search.Debug)

	log.Printf("Search: top_k_per_store=%d, global_top_n=%d, epsilon=%.2f",
		cfg.Search.TopKPerStore,
		cfg.Search.GlobalTopN,
		cfg.Search.ScoreEpsilon)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(queryService, comparisonService, indexer, composer, store)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
