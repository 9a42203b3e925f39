package usecase

import (
	"regexp"
	"strings"

	"github.com/dealscope/backend/internal/domain"
)

// comparisonKeywords trigger the compare path. The list is deterministic
// and intentionally narrow; phrasings outside it fall back to search.
// Multi-word entries come first so item extraction splits on the longest
// match.
var comparisonKeywords = []string{
	"better price",
	"better deal",
	"best deal",
	"comparison",
	"compare",
	"versus",
	"cheaper",
	"vs.",
	"vs",
}

// conceptNoiseWords are filler tokens stripped from an extracted item
// concept ("compare prices for apples at ..." -> "apples").
var conceptNoiseWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "for": true,
	"at": true, "in": true, "on": true, "to": true, "and": true,
	"between": true, "across": true, "price": true, "prices": true,
	"deal": true, "deals": true, "store": true, "stores": true,
	"which": true, "what": true, "is": true, "are": true, "has": true,
	"please": true, "me": true, "tell": true, "show": true, "find": true,
	"where": true, "buy": true, "get": true,
}

var conceptPunctRegex = regexp.MustCompile(`[^\w\s]`)

// ClassifyQuery infers intent, target stores, and (for compare intent) the
// item concept from a raw question. selected narrows scoping explicitly;
// otherwise known store names mentioned in the text are used; otherwise the
// query fans out to every known store.
func ClassifyQuery(text string, selected, known []string) domain.Query {
	clean := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), "?"))

	q := domain.Query{Text: text, Intent: domain.IntentSearch}

	keyword := ""
	for _, kw := range comparisonKeywords {
		if strings.Contains(clean, kw) {
			q.Intent = domain.IntentCompare
			keyword = kw
			break
		}
	}

	q.Stores = scopeStores(clean, selected, known)

	if q.Intent == domain.IntentCompare {
		q.Item = extractItemConcept(clean, keyword, known)
	}

	return q
}

// scopeStores picks the store collections a query should run against.
func scopeStores(clean string, selected, known []string) []string {
	if len(selected) > 0 {
		out := make([]string, 0, len(selected))
		for _, s := range selected {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	var mentioned []string
	for _, store := range known {
		if strings.Contains(clean, strings.ToLower(store)) {
			mentioned = append(mentioned, store)
		}
	}
	if len(mentioned) > 0 {
		return mentioned
	}
	return known
}

// extractItemConcept pulls the product concept out of a comparison query.
// The text after the trigger keyword usually names the item; the part
// before it is the fallback. Store names and filler words are stripped.
func extractItemConcept(clean, keyword string, known []string) string {
	candidate := clean
	if keyword != "" {
		if idx := strings.Index(clean, keyword); idx >= 0 {
			after := clean[idx+len(keyword):]
			before := clean[:idx]
			if strings.TrimSpace(after) != "" {
				candidate = after
			} else {
				candidate = before
			}
		}
	}

	for _, store := range known {
		candidate = strings.ReplaceAll(candidate, strings.ToLower(store), " ")
	}
	for _, kw := range comparisonKeywords {
		candidate = strings.ReplaceAll(candidate, kw, " ")
	}
	candidate = conceptPunctRegex.ReplaceAllString(candidate, " ")

	var kept []string
	for _, word := range strings.Fields(candidate) {
		if !conceptNoiseWords[word] {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}
