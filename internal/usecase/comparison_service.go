package usecase

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/dealscope/backend/internal/domain"
)

// defaultScoreEpsilon is the similarity band within which two matches are
// considered equally good and the cheaper one wins.
const defaultScoreEpsilon = 0.02

// ComparisonConfig holds configuration for the comparison service.
type ComparisonConfig struct {
	TopKPerStore int
	ScoreEpsilon float64
	Debug        bool
}

// ComparisonService fetches the best matching deal per store for an item
// concept and computes unit-price differentials between stores.
type ComparisonService struct {
	store    domain.DealStore
	embedder domain.Embedder
	topK     int
	epsilon  float64
	debug    bool
}

// NewComparisonService creates a comparison service with the given configuration.
func NewComparisonService(store domain.DealStore, embedder domain.Embedder, cfg ComparisonConfig) *ComparisonService {
	topK := cfg.TopKPerStore
	if topK <= 0 {
		topK = 5
	}
	epsilon := cfg.ScoreEpsilon
	if epsilon <= 0 {
		epsilon = defaultScoreEpsilon
	}
	return &ComparisonService{
		store:    store,
		embedder: embedder,
		topK:     topK,
		epsilon:  epsilon,
		debug:    cfg.Debug,
	}
}

// CompareItem finds each store's best match for the item concept and
// computes pairwise differentials for stores whose unit prices share a
// canonical class. Stores without data still appear in the result with a
// nil deal so callers can show what was and wasn't found.
func (s *ComparisonService) CompareItem(ctx context.Context, item string, stores []string) (*domain.ComparisonResult, error) {
	if item == "" {
		return nil, fmt.Errorf("%w: empty item concept", domain.ErrInvalidRequest)
	}
	if len(stores) == 0 {
		var err error
		stores, err = s.store.ListStores(ctx)
		if err != nil {
			return nil, wrapCollaborator(err)
		}
	}

	result := &domain.ComparisonResult{Item: item}
	if len(stores) == 0 {
		result.Verdict = domain.VerdictInsufficient
		return result, nil
	}

	vector, err := s.embedder.Embed(ctx, item)
	if err != nil {
		return nil, wrapCollaborator(err)
	}

	// Stable store order keeps results deterministic across invocations.
	sorted := append([]string(nil), stores...)
	sort.Strings(sorted)

	for _, store := range sorted {
		match := domain.StoreMatch{Store: store}

		exists, err := s.store.HasCollection(ctx, store)
		if err != nil {
			return nil, wrapCollaborator(err)
		}
		if exists {
			hits, err := s.store.Query(ctx, store, vector, s.topK)
			if err != nil {
				return nil, wrapCollaborator(err)
			}
			if best := s.pickBest(hits); best != nil {
				deal := best.Deal
				match.Deal = &deal
				match.Score = best.Score
			}
		}

		if s.debug {
			if match.Deal != nil {
				log.Printf("[COMPARE] %s: best match %q (score %.3f)", store, match.Deal.Name, match.Score)
			} else {
				log.Printf("[COMPARE] %s: no match for %q", store, item)
			}
		}

		result.Matches = append(result.Matches, match)
	}

	s.computeDeltas(result)
	return result, nil
}

// pickBest selects the single best hit: highest similarity, ties within
// the epsilon band broken by lowest unit price, then by name.
func (s *ComparisonService) pickBest(hits []domain.SearchHit) *domain.SearchHit {
	if len(hits) == 0 {
		return nil
	}

	top := hits[0].Score
	for _, h := range hits[1:] {
		if h.Score > top {
			top = h.Score
		}
	}

	var best *domain.SearchHit
	for i := range hits {
		h := &hits[i]
		if top-h.Score > s.epsilon {
			continue
		}
		if best == nil || cheaperHit(h, best) {
			best = h
		}
	}
	return best
}

// cheaperHit reports whether a should replace b as the best candidate
// within the epsilon band.
func cheaperHit(a, b *domain.SearchHit) bool {
	ap, bp := a.Deal.UnitPrice, b.Deal.UnitPrice
	switch {
	case ap != nil && bp == nil:
		return true
	case ap == nil && bp != nil:
		return false
	case ap != nil && bp != nil && ap.Class == bp.Class && ap.Value != bp.Value:
		return ap.Value < bp.Value
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Deal.Name < b.Deal.Name
}

// computeDeltas fills in pairwise differentials, cross-class flags, and
// the overall verdict. Cross-class pairs are never compared numerically.
func (s *ComparisonService) computeDeltas(result *domain.ComparisonResult) {
	type priced struct {
		store string
		up    domain.UnitPrice
	}

	var comparable []priced
	for _, m := range result.Matches {
		if m.Deal != nil && m.Deal.UnitPrice != nil {
			comparable = append(comparable, priced{store: m.Store, up: *m.Deal.UnitPrice})
		}
	}

	byClass := make(map[domain.UnitClass][]priced)
	for i := 0; i < len(comparable); i++ {
		for j := i + 1; j < len(comparable); j++ {
			a, b := comparable[i], comparable[j]
			if a.up.Class != b.up.Class {
				result.NotComparable = append(result.NotComparable, fmt.Sprintf(
					"%s (%s) vs %s (%s) not directly comparable",
					a.store, a.up.Class, b.store, b.up.Class))
				continue
			}

			low, high := a, b
			if b.up.Value < a.up.Value {
				low, high = b, a
			}
			cheaper := low.store
			if low.up.Value == high.up.Value {
				cheaper = domain.VerdictTie
			}
			result.Deltas = append(result.Deltas, domain.PriceDelta{
				StoreA:   a.store,
				StoreB:   b.store,
				Class:    a.up.Class,
				Absolute: round2(high.up.Value - low.up.Value),
				Percent:  round2((high.up.Value - low.up.Value) / high.up.Value * 100),
				Cheaper:  cheaper,
			})
		}
		byClass[comparable[i].up.Class] = append(byClass[comparable[i].up.Class], comparable[i])
	}

	// Verdict comes from the class with the widest store coverage; fewer
	// than two comparable unit prices means no unit verdict at all.
	var verdictClass domain.UnitClass
	for class, members := range byClass {
		if len(members) < 2 {
			continue
		}
		if verdictClass == "" || len(members) > len(byClass[verdictClass]) ||
			(len(members) == len(byClass[verdictClass]) && class < verdictClass) {
			verdictClass = class
		}
	}
	if verdictClass == "" {
		result.Verdict = domain.VerdictInsufficient
		return
	}

	members := byClass[verdictClass]
	cheapest := members[0]
	tie := false
	for _, m := range members[1:] {
		if m.up.Value < cheapest.up.Value {
			cheapest = m
			tie = false
		} else if m.up.Value == cheapest.up.Value {
			tie = true
		}
	}
	if tie {
		result.Verdict = domain.VerdictTie
		return
	}
	result.Cheapest = cheapest.store
	result.Verdict = cheapest.store
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
