package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dealscope/backend/internal/domain"
)

// NormalizeFlyer parses a raw ingestion document and converts it into flat
// deal records. Batch-level problems (missing store, no categories) fail
// with ErrInvalidSchema. Malformed individual products are skipped and
// reported as warnings so one bad row cannot discard a store's whole week.
func NormalizeFlyer(raw []byte) ([]domain.Deal, []string, error) {
	var doc domain.RawFlyer
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidSchema, err)
	}
	return NormalizeDocument(doc)
}

// NormalizeDocument validates a decoded flyer document and flattens it into
// canonical deals, one per product, with store and category propagated down.
func NormalizeDocument(doc domain.RawFlyer) ([]domain.Deal, []string, error) {
	store := strings.TrimSpace(doc.Store)
	if store == "" {
		return nil, nil, fmt.Errorf("%w: missing store name", domain.ErrInvalidSchema)
	}
	if len(doc.Categories) == 0 {
		return nil, nil, fmt.Errorf("%w: no categories in document for %q", domain.ErrInvalidSchema, store)
	}

	var deals []domain.Deal
	var warnings []string

	for _, category := range doc.Categories {
		categoryName := strings.TrimSpace(category.Name)
		if categoryName == "" {
			categoryName = "Other"
		}

		for i, product := range category.Products {
			name := strings.TrimSpace(product.Name)
			price := strings.TrimSpace(product.Price)
			if name == "" || price == "" {
				warnings = append(warnings, fmt.Sprintf(
					"category %q: product %d skipped: missing name or price", categoryName, i+1))
				continue
			}

			unitPrice, reason := resolveProductUnitPrice(product)

			deals = append(deals, domain.Deal{
				Store:           store,
				DateRange:       strings.TrimSpace(doc.Date),
				Category:        categoryName,
				Name:            name,
				Description:     strings.TrimSpace(product.Description),
				Price:           price,
				Unit:            strings.TrimSpace(product.Unit),
				UnitPrice:       unitPrice,
				UnitPriceReason: reason,
				EmbeddingText:   buildEmbeddingText(name, product.Description, categoryName),
			})
		}
	}

	return deals, warnings, nil
}

// buildEmbeddingText concatenates the searchable text fields of a deal.
func buildEmbeddingText(name, description, category string) string {
	text := name
	if d := strings.TrimSpace(description); d != "" {
		text += " - " + d
	}
	if category != "" {
		text += " - " + category
	}
	return text
}
