package domain

// UnitClass is the canonical basis a unit price is expressed in.
// Cross-store comparisons are only valid within the same class.
type UnitClass string

const (
	UnitClassPer100g  UnitClass = "per_100g"
	UnitClassPer100ml UnitClass = "per_100ml"
	UnitClassPerItem  UnitClass = "per_item"
)

// UnitPrice is a resolved price per canonical unit.
type UnitPrice struct {
	Value float64   `json:"value"`
	Class UnitClass `json:"class"`
}

// Deal is one normalized promotional product record. Deals are immutable
// once indexed; re-ingesting a store replaces its whole collection.
type Deal struct {
	Store           string     `json:"store"`
	DateRange       string     `json:"dateRange,omitempty"`
	Category        string     `json:"category"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Price           string     `json:"price"`
	Unit            string     `json:"unit,omitempty"`
	UnitPrice       *UnitPrice `json:"unitPrice,omitempty"`
	UnitPriceReason string     `json:"unitPriceReason,omitempty"`
	EmbeddingText   string     `json:"-"`
}

// RawFlyer is the wire format of one store's weekly promotional document,
// as produced by the scraping collaborators.
type RawFlyer struct {
	Store      string        `json:"store"`
	Date       string        `json:"date"`
	Categories []RawCategory `json:"categories"`
}

// RawCategory groups raw products under a promotional category.
type RawCategory struct {
	Name     string       `json:"name"`
	Products []RawProduct `json:"products"`
}

// RawProduct is one untrusted product entry from a flyer document.
// UnitPrice, when supplied by the source, takes precedence over derivation.
type RawProduct struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	Unit        string   `json:"unit,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
}

// IngestReport summarizes one ingestion run for a store.
type IngestReport struct {
	Store    string   `json:"store"`
	Date     string   `json:"date,omitempty"`
	Indexed  int      `json:"indexed"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}
