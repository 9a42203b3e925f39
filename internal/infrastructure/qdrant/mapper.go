package qdrant

import (
	"strings"

	"github.com/dealscope/backend/internal/domain"
)

// collectionName maps a store name to its collection: lowercased, spaces
// to underscores, with the deals suffix ("Produce Depot" -> "produce_depot_deals").
func collectionName(store string) string {
	slug := strings.ToLower(strings.TrimSpace(store))
	slug = strings.Join(strings.Fields(slug), "_")
	return slug + collectionSuffix
}

// storeName reverses collectionName well enough for display and scoping
// ("produce_depot_deals" -> "Produce Depot").
func storeName(collection string) string {
	base := strings.TrimSuffix(collection, collectionSuffix)
	words := strings.Split(base, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// dealPayload flattens a deal into point metadata used for post-filtering
// and for reconstructing deals from search results.
func dealPayload(deal *domain.Deal) map[string]any {
	payload := map[string]any{
		"store":    deal.Store,
		"category": deal.Category,
		"name":     deal.Name,
		"price":    deal.Price,
	}
	if deal.Description != "" {
		payload["description"] = deal.Description
	}
	if deal.Unit != "" {
		payload["unit"] = deal.Unit
	}
	if deal.DateRange != "" {
		payload["date"] = deal.DateRange
	}
	if deal.UnitPrice != nil {
		payload["unit_price"] = deal.UnitPrice.Value
		payload["unit_price_class"] = string(deal.UnitPrice.Class)
	} else if deal.UnitPriceReason != "" {
		payload["unit_price_reason"] = deal.UnitPriceReason
	}
	return payload
}

// dealFromPayload rebuilds a deal from point metadata. The store recorded
// in the payload wins over the queried name when present.
func dealFromPayload(store string, payload map[string]any) domain.Deal {
	deal := domain.Deal{Store: store}
	if v, ok := payload["store"].(string); ok && v != "" {
		deal.Store = v
	}
	if v, ok := payload["category"].(string); ok {
		deal.Category = v
	}
	if v, ok := payload["name"].(string); ok {
		deal.Name = v
	}
	if v, ok := payload["description"].(string); ok {
		deal.Description = v
	}
	if v, ok := payload["price"].(string); ok {
		deal.Price = v
	}
	if v, ok := payload["unit"].(string); ok {
		deal.Unit = v
	}
	if v, ok := payload["date"].(string); ok {
		deal.DateRange = v
	}
	if v, ok := payload["unit_price"].(float64); ok {
		class := domain.UnitClassPerItem
		if cs, ok := payload["unit_price_class"].(string); ok && cs != "" {
			class = domain.UnitClass(cs)
		}
		deal.UnitPrice = &domain.UnitPrice{Value: v, Class: class}
	}
	if v, ok := payload["unit_price_reason"].(string); ok {
		deal.UnitPriceReason = v
	}
	return deal
}
