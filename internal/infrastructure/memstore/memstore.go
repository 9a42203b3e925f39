package memstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/dealscope/backend/internal/domain"
)

// collection holds one store's deals and their vectors.
type collection struct {
	deals   []domain.Deal
	vectors [][]float64
}

// Store is a thread-safe in-memory vector store using brute-force cosine
// similarity. It backs local runs and tests; the read path takes no write
// locks so concurrent queries are safe.
type Store struct {
	mutex       sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty in-memory deal store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// ReplaceCollection drops any existing collection for the store and
// installs the new batch wholesale.
func (s *Store) ReplaceCollection(ctx context.Context, store string, deals []domain.Deal, vectors [][]float64) error {
	if len(deals) != len(vectors) {
		return domain.ErrInvalidRequest
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c := &collection{
		deals:   append([]domain.Deal(nil), deals...),
		vectors: append([][]float64(nil), vectors...),
	}
	s.collections[store] = c
	return nil
}

// Query returns the topK most similar deals in the store's collection.
func (s *Store) Query(ctx context.Context, store string, vector []float64, topK int) ([]domain.SearchHit, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.collections[store]
	if !ok {
		return nil, domain.ErrNoData
	}
	if topK <= 0 {
		topK = 5
	}

	hits := make([]domain.SearchHit, 0, len(c.deals))
	for i := range c.deals {
		hits = append(hits, domain.SearchHit{
			Deal:  c.deals[i],
			Score: cosine(vector, c.vectors[i]),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Deal.Name < hits[j].Deal.Name
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// HasCollection reports whether the store has been ingested.
func (s *Store) HasCollection(ctx context.Context, store string) (bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.collections[store]
	return ok, nil
}

// CountDeals returns the number of indexed deals for the store.
func (s *Store) CountDeals(ctx context.Context, store string) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	c, ok := s.collections[store]
	if !ok {
		return 0, domain.ErrNoData
	}
	return len(c.deals), nil
}

// ListStores returns the names of all ingested stores, sorted.
func (s *Store) ListStores(ctx context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	stores := make([]string, 0, len(s.collections))
	for name := range s.collections {
		stores = append(stores, name)
	}
	sort.Strings(stores)
	return stores, nil
}

// DeleteCollection removes the store's collection if present.
func (s *Store) DeleteCollection(ctx context.Context, store string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.collections, store)
	return nil
}

// cosine computes cosine similarity without assuming normalized inputs.
func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
