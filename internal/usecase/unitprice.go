package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dealscope/backend/internal/domain"
)

// Reason codes attached to a deal when its unit price cannot be resolved.
const (
	ReasonNoNumericPrice = "no_numeric_price"
	ReasonEmptyUnit      = "empty_unit"
	ReasonUnknownUnit    = "unknown_unit"
)

// Package-level compiled regex patterns for performance
var (
	numericTokenRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// "6x340g", "6 x 340 g", "4X100mL" multipack formats
	multipackRegex = regexp.MustCompile(`(?i)^\s*(\d+)\s*x\s*(\d+(?:\.\d+)?)\s*(g|kg|lbs?|oz|ml|l)\b`)

	// "454 g", "2 kg", "500 mL", or a bare measure word ("lb", "kg")
	// meaning a quantity of one
	measureRegex = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)?\s*/?\s*(g|kg|lbs?|oz|ml|l)\.?\s*$`)

	// "pack of 6", "6 pack", "6pk"
	packRegex = regexp.MustCompile(`(?i)(?:pack\s*of\s*(\d+)|(\d+)\s*[- ]?\s*(?:pack|pk))`)

	countUnitRegex = regexp.MustCompile(`(?i)^\s*/?\s*(each|ea|item|unit|dozen)\.?\s*$`)
)

// grams/millilitres per source unit
var (
	gramsPerUnit = map[string]float64{
		"g":   1,
		"kg":  1000,
		"lb":  453.592,
		"lbs": 453.592,
		"oz":  28.3495,
	}
	mlPerUnit = map[string]float64{
		"ml": 1,
		"l":  1000,
	}
)

// ParsePrice extracts the leading numeric value from a display price string
// such as "$2.99" or "2.99 CAD". Returns ErrPriceParse when no numeric
// token is present.
func ParsePrice(price string) (float64, error) {
	token := numericTokenRegex.FindString(price)
	if token == "" {
		return 0, fmt.Errorf("%w: %q", domain.ErrPriceParse, price)
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrPriceParse, price)
	}
	return value, nil
}

// ResolveUnitPrice derives a canonical unit price from a display price and
// unit string. Weight units normalize to price per 100 g, volume to price
// per 100 mL, counts to price per item. When the inputs cannot be resolved
// it returns nil with a reason code; it never fails hard.
func ResolveUnitPrice(price, unit string) (*domain.UnitPrice, string) {
	base, err := ParsePrice(price)
	if err != nil {
		return nil, ReasonNoNumericPrice
	}

	unit = strings.TrimSpace(unit)
	if unit == "" {
		return nil, ReasonEmptyUnit
	}

	// Multipacks first: total quantity = count x per-unit measure.
	if m := multipackRegex.FindStringSubmatch(unit); m != nil {
		count, _ := strconv.ParseFloat(m[1], 64)
		size, _ := strconv.ParseFloat(m[2], 64)
		measure := strings.ToLower(m[3])
		if count > 0 && size > 0 {
			return perHundred(base, count*size, measure), ""
		}
		return nil, ReasonUnknownUnit
	}

	// Plain measures, with an implicit quantity of one for bare units
	// ("$2.99 lb" means one pound).
	if m := measureRegex.FindStringSubmatch(unit); m != nil {
		qty := 1.0
		if m[1] != "" {
			qty, _ = strconv.ParseFloat(m[1], 64)
		}
		measure := strings.ToLower(m[2])
		if qty > 0 {
			return perHundred(base, qty, measure), ""
		}
		return nil, ReasonUnknownUnit
	}

	// Count-based units.
	if m := countUnitRegex.FindStringSubmatch(unit); m != nil {
		divisor := 1.0
		if strings.EqualFold(m[1], "dozen") {
			divisor = 12
		}
		return &domain.UnitPrice{
			Value: roundUnitPrice(base / divisor),
			Class: domain.UnitClassPerItem,
		}, ""
	}

	if m := packRegex.FindStringSubmatch(unit); m != nil {
		token := m[1]
		if token == "" {
			token = m[2]
		}
		count, _ := strconv.ParseFloat(token, 64)
		if count > 0 {
			return &domain.UnitPrice{
				Value: roundUnitPrice(base / count),
				Class: domain.UnitClassPerItem,
			}, ""
		}
		return nil, ReasonUnknownUnit
	}

	return nil, ReasonUnknownUnit
}

// resolveProductUnitPrice applies the precedence rule: an explicit numeric
// unit_price from the source document wins over the derived value when it
// is plausible, but the canonical class is still inferred from the unit
// string so cross-store comparisons stay valid.
func resolveProductUnitPrice(product domain.RawProduct) (*domain.UnitPrice, string) {
	derived, reason := ResolveUnitPrice(product.Price, product.Unit)

	explicit := product.UnitPrice
	if explicit != nil && *explicit > 0 && !math.IsInf(*explicit, 0) && !math.IsNaN(*explicit) {
		class := domain.UnitClassPerItem
		if derived != nil {
			class = derived.Class
		}
		return &domain.UnitPrice{Value: roundUnitPrice(*explicit), Class: class}, ""
	}

	return derived, reason
}

// perHundred converts a total price for qty units of measure into a price
// per 100 g or per 100 mL.
func perHundred(price, qty float64, measure string) *domain.UnitPrice {
	if factor, ok := gramsPerUnit[measure]; ok {
		return &domain.UnitPrice{
			Value: roundUnitPrice(price / (qty * factor) * 100),
			Class: domain.UnitClassPer100g,
		}
	}
	if factor, ok := mlPerUnit[measure]; ok {
		return &domain.UnitPrice{
			Value: roundUnitPrice(price / (qty * factor) * 100),
			Class: domain.UnitClassPer100ml,
		}
	}
	return nil
}

// roundUnitPrice keeps four decimal places, enough to compare cents on a
// per-100g basis without accumulating float noise.
func roundUnitPrice(v float64) float64 {
	return math.Round(v*10000) / 10000
}
