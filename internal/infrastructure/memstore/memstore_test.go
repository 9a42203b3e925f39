package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dealscope/backend/internal/domain"
)

func deal(name string) domain.Deal {
	return domain.Deal{Store: "Metro", Name: name, Price: "$1.00"}
}

func TestMemstore_ReplaceAndQuery(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	deals := []domain.Deal{deal("Apples"), deal("Bananas")}
	vectors := [][]float64{{1, 0}, {0, 1}}
	if err := store.ReplaceCollection(ctx, "Metro", deals, vectors); err != nil {
		t.Fatalf("replace: %v", err)
	}

	t.Run("ranks by cosine similarity", func(t *testing.T) {
		hits, err := store.Query(ctx, "Metro", []float64{1, 0.1}, 5)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(hits) != 2 {
			t.Fatalf("hits = %d, want 2", len(hits))
		}
		if hits[0].Deal.Name != "Apples" {
			t.Errorf("top hit = %q, want Apples", hits[0].Deal.Name)
		}
		if hits[0].Score <= hits[1].Score {
			t.Errorf("scores not descending: %v, %v", hits[0].Score, hits[1].Score)
		}
	})

	t.Run("topK truncates results", func(t *testing.T) {
		hits, err := store.Query(ctx, "Metro", []float64{1, 0}, 1)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(hits) != 1 {
			t.Errorf("hits = %d, want 1", len(hits))
		}
	})

	t.Run("missing collection is ErrNoData", func(t *testing.T) {
		_, err := store.Query(ctx, "Ghost", []float64{1, 0}, 5)
		if !errors.Is(err, domain.ErrNoData) {
			t.Errorf("error = %v, want ErrNoData", err)
		}
	})

	t.Run("replace supersedes previous batch", func(t *testing.T) {
		if err := store.ReplaceCollection(ctx, "Metro", []domain.Deal{deal("Oranges")}, [][]float64{{1, 1}}); err != nil {
			t.Fatalf("replace: %v", err)
		}
		count, err := store.CountDeals(ctx, "Metro")
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count != 1 {
			t.Errorf("count = %d, want 1", count)
		}
	})

	t.Run("length mismatch is rejected", func(t *testing.T) {
		err := store.ReplaceCollection(ctx, "Metro", []domain.Deal{deal("A")}, nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})
}

func TestMemstore_Collections(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.ReplaceCollection(ctx, "Zehrs", []domain.Deal{deal("Milk")}, [][]float64{{1}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.ReplaceCollection(ctx, "Costco", []domain.Deal{deal("Milk")}, [][]float64{{1}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	t.Run("lists stores sorted", func(t *testing.T) {
		stores, err := store.ListStores(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(stores) != 2 || stores[0] != "Costco" || stores[1] != "Zehrs" {
			t.Errorf("stores = %v, want [Costco Zehrs]", stores)
		}
	})

	t.Run("has collection", func(t *testing.T) {
		exists, _ := store.HasCollection(ctx, "Costco")
		if !exists {
			t.Error("Costco should exist")
		}
		exists, _ = store.HasCollection(ctx, "Ghost")
		if exists {
			t.Error("Ghost should not exist")
		}
	})

	t.Run("count of missing collection is ErrNoData", func(t *testing.T) {
		_, err := store.CountDeals(ctx, "Ghost")
		if !errors.Is(err, domain.ErrNoData) {
			t.Errorf("error = %v, want ErrNoData", err)
		}
	})

	t.Run("delete removes the collection", func(t *testing.T) {
		if err := store.DeleteCollection(ctx, "Costco"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		exists, _ := store.HasCollection(ctx, "Costco")
		if exists {
			t.Error("Costco should be gone")
		}
	})
}

func TestMemstore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.ReplaceCollection(ctx, "Metro", []domain.Deal{deal("Milk")}, [][]float64{{1, 0}})
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Query(ctx, "Metro", []float64{1, 0}, 5)
		}()
	}
	wg.Wait()

	count, err := store.CountDeals(ctx, "Metro")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical vectors", []float64{1, 2}, []float64{1, 2}, 1},
		{"orthogonal vectors", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite vectors", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosine(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosine = %v, want %v", got, tt.want)
			}
		})
	}
}
