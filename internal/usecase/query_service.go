package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/dealscope/backend/internal/domain"
)

// QueryConfig holds configuration for the query service.
type QueryConfig struct {
	TopKPerStore int
	GlobalTopN   int
	Debug        bool
}

// QueryService classifies incoming questions, retrieves deals from the
// scoped store collections, and assembles a ranked, deduplicated result
// set. Comparison queries are delegated to the comparison service.
type QueryService struct {
	store      domain.DealStore
	embedder   domain.Embedder
	comparison *ComparisonService
	topK       int
	topN       int
	debug      bool
}

// NewQueryService creates a query service with the given configuration.
func NewQueryService(store domain.DealStore, embedder domain.Embedder, comparison *ComparisonService, cfg QueryConfig) *QueryService {
	topK := cfg.TopKPerStore
	if topK <= 0 {
		topK = 5
	}
	topN := cfg.GlobalTopN
	if topN <= 0 {
		topN = 10
	}
	return &QueryService{
		store:      store,
		embedder:   embedder,
		comparison: comparison,
		topK:       topK,
		topN:       topN,
		debug:      cfg.Debug,
	}
}

// HandleQuery answers a natural-language question. A store with no indexed
// collection is a normal condition and yields an explicit no-data answer,
// never an error.
func (s *QueryService) HandleQuery(ctx context.Context, text string, selectedStores []string) (*domain.Answer, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidRequest)
	}

	known, err := s.store.ListStores(ctx)
	if err != nil {
		return nil, wrapCollaborator(err)
	}

	query := ClassifyQuery(text, selectedStores, known)
	if s.debug {
		log.Printf("[QUERY] intent=%s stores=%v item=%q text=%q", query.Intent, query.Stores, query.Item, text)
	}

	if query.Intent == domain.IntentCompare {
		item := query.Item
		if item == "" {
			item = query.Text
		}
		comparison, err := s.comparison.CompareItem(ctx, item, query.Stores)
		if err != nil {
			return nil, err
		}
		answer := &domain.Answer{Intent: domain.IntentCompare, Comparison: comparison}
		if matchCount(comparison) == 0 {
			answer.NoData = true
			answer.Message = fmt.Sprintf("no deals found for %q in any tracked store", item)
		}
		return answer, nil
	}

	hits, searched, err := s.searchScoped(ctx, text, query.Stores, s.topN)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{Intent: domain.IntentSearch, Hits: hits}
	if searched == 0 {
		answer.NoData = true
		answer.Message = "no deal data has been ingested for the requested stores yet"
	} else if len(hits) == 0 {
		answer.Message = fmt.Sprintf("no deals matched %q", text)
	}
	return answer, nil
}

// Search runs a plain semantic search without intent classification, for
// the GET /api/search surface and the verification CLI.
func (s *QueryService) Search(ctx context.Context, text string, stores []string, limit int) ([]domain.SearchHit, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidRequest)
	}
	if len(stores) == 0 {
		known, err := s.store.ListStores(ctx)
		if err != nil {
			return nil, wrapCollaborator(err)
		}
		stores = known
	}
	if limit <= 0 {
		limit = s.topN
	}
	hits, _, err := s.searchScoped(ctx, text, stores, limit)
	return hits, err
}

// ListStores reports every store with an indexed collection.
func (s *QueryService) ListStores(ctx context.Context) ([]string, error) {
	stores, err := s.store.ListStores(ctx)
	if err != nil {
		return nil, wrapCollaborator(err)
	}
	sort.Strings(stores)
	return stores, nil
}

// searchScoped retrieves top-K hits per scoped store, merges them, and
// ranks by score with deterministic tie-breaking by store then deal name.
// It returns the number of stores that actually had a collection.
func (s *QueryService) searchScoped(ctx context.Context, text string, stores []string, limit int) ([]domain.SearchHit, int, error) {
	if len(stores) == 0 {
		return nil, 0, nil
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, 0, wrapCollaborator(err)
	}

	var merged []domain.SearchHit
	searched := 0
	for _, store := range stores {
		exists, err := s.store.HasCollection(ctx, store)
		if err != nil {
			return nil, 0, wrapCollaborator(err)
		}
		if !exists {
			if s.debug {
				log.Printf("[QUERY] %s: no collection, skipping", store)
			}
			continue
		}
		searched++

		hits, err := s.store.Query(ctx, store, vector, s.topK)
		if err != nil {
			return nil, 0, wrapCollaborator(err)
		}
		merged = append(merged, hits...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		if merged[i].Deal.Store != merged[j].Deal.Store {
			return merged[i].Deal.Store < merged[j].Deal.Store
		}
		return merged[i].Deal.Name < merged[j].Deal.Name
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, searched, nil
}

func matchCount(result *domain.ComparisonResult) int {
	n := 0
	for _, m := range result.Matches {
		if m.Deal != nil {
			n++
		}
	}
	return n
}
