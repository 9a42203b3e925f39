package domain

// Intent is the classified purpose of an incoming query.
type Intent string

const (
	IntentSearch  Intent = "search"
	IntentCompare Intent = "compare"
)

// Query is a classified natural-language question about deals.
type Query struct {
	Text   string   `json:"text"`
	Intent Intent   `json:"intent"`
	Stores []string `json:"stores,omitempty"`
	Item   string   `json:"item,omitempty"` // extracted item concept for compare intent
}

// SearchHit is one retrieved deal with its similarity score.
type SearchHit struct {
	Deal  Deal    `json:"deal"`
	Score float64 `json:"score"`
}

// StoreMatch is the best matching deal found for one store during a
// comparison. Deal is nil when the store produced no match.
type StoreMatch struct {
	Store string  `json:"store"`
	Deal  *Deal   `json:"deal,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// PriceDelta is the computed differential between two stores' best matches.
// Only pairs sharing a canonical unit class produce numeric deltas.
type PriceDelta struct {
	StoreA   string    `json:"storeA"`
	StoreB   string    `json:"storeB"`
	Class    UnitClass `json:"class"`
	Absolute float64   `json:"absolute"`
	Percent  float64   `json:"percent"`
	Cheaper  string    `json:"cheaper"` // store name, or "tie"
}

// Comparison verdicts. Cheapest holds a store name otherwise.
const (
	VerdictTie          = "tie"
	VerdictInsufficient = "insufficient data for unit comparison"
)

// ComparisonResult is the ephemeral outcome of comparing an item concept
// across stores. It references live deals and owns no persisted state.
type ComparisonResult struct {
	Item          string       `json:"item"`
	Matches       []StoreMatch `json:"matches"`
	Deltas        []PriceDelta `json:"deltas,omitempty"`
	NotComparable []string     `json:"notComparable,omitempty"`
	Cheapest      string       `json:"cheapest,omitempty"`
	Verdict       string       `json:"verdict"`
}

// Answer is the structured payload handed back to the serving layer.
// Narrative is advisory prose; every numeric fact lives in the fields.
type Answer struct {
	Intent     Intent            `json:"intent"`
	Hits       []SearchHit       `json:"hits,omitempty"`
	Comparison *ComparisonResult `json:"comparison,omitempty"`
	Narrative  string            `json:"narrative,omitempty"`
	NoData     bool              `json:"noData,omitempty"`
	Message    string            `json:"message,omitempty"`
}
