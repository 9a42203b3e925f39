package cli

import (
	"fmt"

	"github.com/dealscope/backend/config"
	"github.com/dealscope/backend/internal/domain"
	"github.com/dealscope/backend/internal/infrastructure/embedding"
	"github.com/dealscope/backend/internal/infrastructure/memstore"
	"github.com/dealscope/backend/internal/infrastructure/qdrant"
	"github.com/dealscope/backend/internal/usecase"
)

// deps bundles the wired services shared by all CLI commands.
type deps struct {
	cfg      *config.Config
	store    domain.DealStore
	embedder domain.Embedder
	indexer  *usecase.Indexer
	query    *usecase.QueryService
}

// buildDeps loads configuration and wires the deal store, embeddings
// client and services the commands operate on.
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	var store domain.DealStore
	switch cfg.VectorStore.Type {
	case "memory":
		store = memstore.NewStore()
	default:
		store = qdrant.NewClient(qdrant.Config{
			URL:       cfg.VectorStore.URL,
			APIKey:    cfg.VectorStore.APIKey,
			Dimension: cfg.VectorStore.Dimension,
			Timeout:   cfg.VectorStore.Timeout,
		})
	}

	embedder := embedding.NewClient(embedding.Config{
		BaseURL:           cfg.Embedding.BaseURL,
		APIKey:            cfg.Embedding.APIKey,
		Model:             cfg.Embedding.Model,
		Timeout:           cfg.Embedding.Timeout,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})

	comparison := usecase.NewComparisonService(store, embedder, usecase.ComparisonConfig{
		TopKPerStore: cfg.Search.TopKPerStore,
		ScoreEpsilon: cfg.Search.ScoreEpsilon,
	})
	query := usecase.NewQueryService(store, embedder, comparison, usecase.QueryConfig{
		TopKPerStore: cfg.Search.TopKPerStore,
		GlobalTopN:   cfg.Search.GlobalTopN,
	})

	return &deps{
		cfg:      cfg,
		store:    store,
		embedder: embedder,
		indexer:  usecase.NewIndexer(store, embedder),
		query:    query,
	}, nil
}
