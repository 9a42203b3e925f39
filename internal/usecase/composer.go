package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/dealscope/backend/internal/domain"
)

// Composer packages ranked hits or a comparison into a structured answer
// and delegates only the final phrasing to the text-generation
// collaborator. Every price, unit, and winner in the narrative comes from
// the structured fields; the collaborator is never asked to compute.
type Composer struct {
	textgen domain.TextGenerator
	debug   bool
}

// NewComposer creates a composer. A nil generator disables narration,
// which is a supported degraded mode, not an error.
func NewComposer(textgen domain.TextGenerator, debug bool) *Composer {
	return &Composer{textgen: textgen, debug: debug}
}

// Compose attaches a narrative to the answer. Narration failures fall back
// to returning the structured answer untouched.
func (c *Composer) Compose(ctx context.Context, answer *domain.Answer) *domain.Answer {
	if answer == nil || c.textgen == nil {
		return answer
	}
	if answer.NoData {
		return answer
	}

	prompt := c.buildPrompt(answer)
	facts := FormatFacts(answer)

	narrative, err := c.textgen.Complete(ctx, prompt, facts)
	if err != nil {
		log.Printf("[COMPOSE] narration failed, returning structured answer: %v", err)
		return answer
	}
	answer.Narrative = strings.TrimSpace(narrative)
	return answer
}

func (c *Composer) buildPrompt(answer *domain.Answer) string {
	if answer.Intent == domain.IntentCompare && answer.Comparison != nil {
		return fmt.Sprintf(`I want to compare prices for %q across grocery stores.

Summarize the comparison below. State which store is cheaper and why, using
the unit prices exactly as given. If the data says the unit prices are not
directly comparable or insufficient, say so plainly and fall back to the
display prices. Use short markdown with a "Best Deal" section at the end.`,
			answer.Comparison.Item)
	}
	return `Summarize the grocery deals below for a shopper. Mention which
stores the deals are from, quote prices and unit prices exactly as given,
and keep the formatting to short markdown bullet points.`
}

// FormatFacts renders the structured answer as a plain-text facts block
// for the text-generation prompt, grouped by store.
func FormatFacts(answer *domain.Answer) string {
	var b strings.Builder

	if answer.Intent == domain.IntentCompare && answer.Comparison != nil {
		formatComparisonFacts(&b, answer.Comparison)
		return b.String()
	}

	if len(answer.Hits) == 0 {
		return "No results found."
	}

	byStore := make(map[string][]domain.SearchHit)
	var stores []string
	for _, hit := range answer.Hits {
		if _, ok := byStore[hit.Deal.Store]; !ok {
			stores = append(stores, hit.Deal.Store)
		}
		byStore[hit.Deal.Store] = append(byStore[hit.Deal.Store], hit)
	}
	sort.Strings(stores)

	fmt.Fprintf(&b, "Found %d deals from %d stores.\n", len(answer.Hits), len(stores))
	for _, store := range stores {
		fmt.Fprintf(&b, "\n### %s\n", store)
		for _, hit := range byStore[store] {
			writeDealLine(&b, &hit.Deal)
		}
	}
	return b.String()
}

func formatComparisonFacts(b *strings.Builder, cmp *domain.ComparisonResult) {
	fmt.Fprintf(b, "Comparison for %q:\n", cmp.Item)
	for _, m := range cmp.Matches {
		if m.Deal == nil {
			fmt.Fprintf(b, "- %s: no matching deal\n", m.Store)
			continue
		}
		fmt.Fprintf(b, "- %s: ", m.Store)
		writeDealLine(b, m.Deal)
	}
	for _, d := range cmp.Deltas {
		if d.Cheaper == domain.VerdictTie {
			fmt.Fprintf(b, "- %s and %s are tied at the same %s price\n", d.StoreA, d.StoreB, d.Class)
			continue
		}
		fmt.Fprintf(b, "- %s is cheaper than the other by $%.2f %s (%.2f%%)\n",
			d.Cheaper, d.Absolute, d.Class, d.Percent)
	}
	for _, note := range cmp.NotComparable {
		fmt.Fprintf(b, "- %s\n", note)
	}
	fmt.Fprintf(b, "Verdict: %s\n", cmp.Verdict)
}

func writeDealLine(b *strings.Builder, deal *domain.Deal) {
	fmt.Fprintf(b, "**%s**: %s", deal.Name, deal.Price)
	if deal.Unit != "" {
		fmt.Fprintf(b, " / %s", deal.Unit)
	}
	if deal.UnitPrice != nil {
		fmt.Fprintf(b, " ($%.2f %s)", deal.UnitPrice.Value, deal.UnitPrice.Class)
	}
	if deal.Description != "" {
		fmt.Fprintf(b, " - %s", deal.Description)
	}
	b.WriteString("\n")
}
