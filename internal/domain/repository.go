package domain

import "context"

// DealStore is the persistence/search collaborator holding one searchable
// collection of deals per store. Implementations must make ReplaceCollection
// a full overwrite: delete whatever existed, then insert the new batch.
type DealStore interface {
	ReplaceCollection(ctx context.Context, store string, deals []Deal, vectors [][]float64) error
	Query(ctx context.Context, store string, vector []float64, topK int) ([]SearchHit, error)
	HasCollection(ctx context.Context, store string) (bool, error)
	CountDeals(ctx context.Context, store string) (int, error)
	ListStores(ctx context.Context) ([]string, error)
	DeleteCollection(ctx context.Context, store string) error
}

// Embedder converts free text into vector representations for similarity
// search. Batch embedding keeps ingestion of a full flyer to few calls.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// TextGenerator phrases structured facts as prose. It is only ever handed
// facts computed by the core; it never produces numbers of its own.
type TextGenerator interface {
	Complete(ctx context.Context, prompt, facts string) (string, error)
}
