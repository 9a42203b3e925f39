package usecase

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/dealscope/backend/internal/domain"
)

const fakeDim = 64

// fakeEmbedder produces deterministic bag-of-words vectors so texts that
// share tokens score higher, without any network dependency.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec := make([]float64, fakeDim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32()%fakeDim)]++
	}
	return vec, nil
}

func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i], _ = f.Embed(ctx, t)
	}
	return out, nil
}

// stubStore serves canned hits per store, for tests that need exact
// similarity scores rather than computed ones.
type stubStore struct {
	hits map[string][]domain.SearchHit
}

func newStubStore() *stubStore {
	return &stubStore{hits: make(map[string][]domain.SearchHit)}
}

func (s *stubStore) ReplaceCollection(ctx context.Context, store string, deals []domain.Deal, vectors [][]float64) error {
	hits := make([]domain.SearchHit, len(deals))
	for i, d := range deals {
		hits[i] = domain.SearchHit{Deal: d}
	}
	s.hits[store] = hits
	return nil
}

func (s *stubStore) Query(ctx context.Context, store string, vector []float64, topK int) ([]domain.SearchHit, error) {
	hits, ok := s.hits[store]
	if !ok {
		return nil, domain.ErrNoData
	}
	out := append([]domain.SearchHit(nil), hits...)
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (s *stubStore) HasCollection(ctx context.Context, store string) (bool, error) {
	_, ok := s.hits[store]
	return ok, nil
}

func (s *stubStore) CountDeals(ctx context.Context, store string) (int, error) {
	hits, ok := s.hits[store]
	if !ok {
		return 0, domain.ErrNoData
	}
	return len(hits), nil
}

func (s *stubStore) ListStores(ctx context.Context) ([]string, error) {
	stores := make([]string, 0, len(s.hits))
	for name := range s.hits {
		stores = append(stores, name)
	}
	sort.Strings(stores)
	return stores, nil
}

func (s *stubStore) DeleteCollection(ctx context.Context, store string) error {
	delete(s.hits, store)
	return nil
}

// pricedHit builds a hit with a resolved unit price for comparison tests.
func pricedHit(store, name string, score, value float64, class domain.UnitClass) domain.SearchHit {
	return domain.SearchHit{
		Deal: domain.Deal{
			Store:     store,
			Name:      name,
			Price:     "$0.00",
			UnitPrice: &domain.UnitPrice{Value: value, Class: class},
		},
		Score: score,
	}
}
