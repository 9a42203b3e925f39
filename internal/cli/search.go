package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the 'search' command for querying indexed deals.
func NewSearchCmd() *cobra.Command {
	var stores []string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed deals by similarity",
		Long: `Run a semantic search over indexed deals. By default all stores
are searched and results are merged by similarity score.`,
		Example: `  dealsctl search "chicken breast"
  dealsctl search "greek yogurt" --stores metro,costco --limit 5
  dealsctl search "olive oil" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), strings.Join(args, " "), stores, limit, jsonOutput)
		},
	}

	cmd.Flags().StringSliceVarP(&stores, "stores", "s", nil, "Restrict search to these stores")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runSearch(ctx context.Context, query string, stores []string, limit int, jsonOutput bool) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	hits, err := d.query.Search(ctx, query, stores, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No matching deals found.")
		return nil
	}

	for _, hit := range hits {
		fmt.Printf("%.3f  [%s] %s: %s", hit.Score, hit.Deal.Store, hit.Deal.Name, hit.Deal.Price)
		if hit.Deal.Unit != "" {
			fmt.Printf(" / %s", hit.Deal.Unit)
		}
		if hit.Deal.UnitPrice != nil {
			fmt.Printf(" ($%.2f %s)", hit.Deal.UnitPrice.Value, hit.Deal.UnitPrice.Class)
		}
		fmt.Println()
	}

	return nil
}
