package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dealscope/backend/internal/domain"
	"github.com/dealscope/backend/internal/usecase"
)

// maxIngestBody caps ingestion documents at 4 MiB; weekly flyers are far
// smaller.
const maxIngestBody = 4 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	query      *usecase.QueryService
	comparison *usecase.ComparisonService
	indexer    *usecase.Indexer
	composer   *usecase.Composer
	store      domain.DealStore
}

// NewHandler creates a new HTTP handler
func NewHandler(
	query *usecase.QueryService,
	comparison *usecase.ComparisonService,
	indexer *usecase.Indexer,
	composer *usecase.Composer,
	store domain.DealStore,
) *Handler {
	return &Handler{
		query:      query,
		comparison: comparison,
		indexer:    indexer,
		composer:   composer,
		store:      store,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dealscope-backend",
		"version": "1.0.0",
	})
}

// chatRequest is a natural-language question, optionally scoped to stores.
type chatRequest struct {
	Message string   `json:"message" binding:"required"`
	Stores  []string `json:"stores,omitempty"`
}

// Chat classifies the message, retrieves or compares deals, and narrates
// the structured answer.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	answer, err := h.query.HandleQuery(c.Request.Context(), req.Message, req.Stores)
	if err != nil {
		h.writeError(c, err)
		return
	}

	answer = h.composer.Compose(c.Request.Context(), answer)
	c.JSON(http.StatusOK, answer)
}

// compareRequest names an item concept and optional stores to compare.
type compareRequest struct {
	Item   string   `json:"item" binding:"required"`
	Stores []string `json:"stores,omitempty"`
}

// Compare runs a direct item comparison across stores.
func (h *Handler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item is required"})
		return
	}

	result, err := h.comparison.CompareItem(c.Request.Context(), req.Item, req.Stores)
	if err != nil {
		h.writeError(c, err)
		return
	}

	answer := &domain.Answer{Intent: domain.IntentCompare, Comparison: result}
	answer = h.composer.Compose(c.Request.Context(), answer)
	c.JSON(http.StatusOK, answer)
}

// Search runs a plain semantic search: GET /api/search?query=...&store=...&limit=...
func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	var stores []string
	if store := strings.TrimSpace(c.Query("store")); store != "" {
		stores = []string{store}
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	hits, err := h.query.Search(c.Request.Context(), query, stores, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": hits})
}

// ListStores reports every store with an indexed collection.
func (h *Handler) ListStores(c *gin.Context) {
	stores, err := h.query.ListStores(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stores": stores})
}

// Ingest accepts a raw flyer document and fully replaces that store's
// collection. Responds 200 with a report even when some products were
// skipped; only schema-level failures are 400s.
func (h *Handler) Ingest(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIngestBody))
	if err != nil || len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a flyer JSON document"})
		return
	}

	report, err := h.indexer.IngestDocument(c.Request.Context(), raw)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Debug reports collection names and document counts, for checking that
// ingestion succeeded.
func (h *Handler) Debug(c *gin.Context) {
	ctx := c.Request.Context()
	stores, err := h.store.ListStores(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}

	collections := make([]gin.H, 0, len(stores))
	for _, store := range stores {
		count, err := h.store.CountDeals(ctx, store)
		if err != nil && !errors.Is(err, domain.ErrNoData) {
			h.writeError(c, err)
			return
		}
		collections = append(collections, gin.H{"store": store, "documents": count})
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidSchema):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCollaborator):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
