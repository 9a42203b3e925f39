package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/dealscope/backend/internal/domain"
)

// Indexer turns normalized deals into embedded, searchable collections.
// Reindexing is a full replace per store: idempotent, never incremental,
// so stale and fresh deals can never mix within one store.
type Indexer struct {
	store    domain.DealStore
	embedder domain.Embedder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIndexer creates an indexer over the given store and embedder.
func NewIndexer(store domain.DealStore, embedder domain.Embedder) *Indexer {
	return &Indexer{
		store:    store,
		embedder: embedder,
		locks:    make(map[string]*sync.Mutex),
	}
}

// IngestDocument normalizes a raw flyer document, resolves unit prices,
// and replaces the store's collection with the result. Schema-level
// failures abort; per-product problems are reported in the returned
// report's warnings.
func (ix *Indexer) IngestDocument(ctx context.Context, raw []byte) (*domain.IngestReport, error) {
	deals, warnings, err := NormalizeFlyer(raw)
	if err != nil {
		return nil, err
	}

	store := ""
	date := ""
	if len(deals) > 0 {
		store = deals[0].Store
		date = deals[0].DateRange
	} else {
		// All products were skipped; recover the store name for the report.
		var doc domain.RawFlyer
		_ = json.Unmarshal(raw, &doc)
		store = doc.Store
		date = doc.Date
	}

	if err := ix.ReindexStore(ctx, store, deals); err != nil {
		return nil, err
	}

	return &domain.IngestReport{
		Store:    store,
		Date:     date,
		Indexed:  len(deals),
		Skipped:  len(warnings),
		Warnings: warnings,
	}, nil
}

// ReindexStore deletes any existing collection for the store, creates a
// fresh one, and inserts every deal with its embedding and metadata.
// Ingestions for the same store are serialized; different stores may
// reindex concurrently.
func (ix *Indexer) ReindexStore(ctx context.Context, store string, deals []domain.Deal) error {
	if store == "" {
		return fmt.Errorf("%w: empty store name", domain.ErrInvalidRequest)
	}

	lock := ix.storeLock(store)
	lock.Lock()
	defer lock.Unlock()

	texts := make([]string, len(deals))
	for i := range deals {
		texts[i] = deals[i].EmbeddingText
	}

	var vectors [][]float64
	if len(texts) > 0 {
		var err error
		vectors, err = ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return wrapCollaborator(err)
		}
		if len(vectors) != len(deals) {
			return fmt.Errorf("%w: embedder returned %d vectors for %d deals",
				domain.ErrCollaborator, len(vectors), len(deals))
		}
	}

	if err := ix.store.ReplaceCollection(ctx, store, deals, vectors); err != nil {
		return wrapCollaborator(err)
	}

	log.Printf("[INDEX] %s: indexed %d deals", store, len(deals))
	return nil
}

// storeLock returns the ingestion mutex for a store, creating it on first use.
func (ix *Indexer) storeLock(store string) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if lock, ok := ix.locks[store]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	ix.locks[store] = lock
	return lock
}

// wrapCollaborator tags an infrastructure failure as a collaborator error
// unless it already carries the sentinel.
func wrapCollaborator(err error) error {
	if errors.Is(err, domain.ErrCollaborator) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrCollaborator, err)
}
