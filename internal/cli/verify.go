package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dealscope/backend/internal/domain"
)

// NewVerifyCmd creates the 'verify' command for checking the deal store.
func NewVerifyCmd() *cobra.Command {
	var probe string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify deal store collections and configuration",
		Long: `Verify that the configuration is valid, that the vector store is
reachable, and that each store collection holds indexed deals. With
--probe, runs a sample search against every collection to confirm
retrieval works end to end.`,
		Example: `  dealsctl verify
  dealsctl verify --probe "chicken breast"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), probe)
		},
	}

	cmd.Flags().StringVarP(&probe, "probe", "p", "", "Run a sample search against each collection")

	return cmd
}

// runVerify checks every collection and reports counts.
func runVerify(ctx context.Context, probe string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	fmt.Printf("✓ Vector store: %s\n", d.cfg.VectorStore.Type)

	stores, err := d.store.ListStores(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(stores) == 0 {
		fmt.Println("✗ No store collections found. Run 'dealsctl ingest' first.")
		return nil
	}

	fmt.Printf("✓ Store collections: %d\n\n", len(stores))

	for _, store := range stores {
		count, err := d.store.CountDeals(ctx, store)
		switch {
		case errors.Is(err, domain.ErrNoData):
			fmt.Printf("✗ %s: collection missing\n", store)
			continue
		case err != nil:
			fmt.Printf("✗ %s: %v\n", store, err)
			continue
		case count == 0:
			fmt.Printf("✗ %s: collection empty\n", store)
			continue
		}
		fmt.Printf("✓ %s: %d deals\n", store, count)

		if probe == "" {
			continue
		}
		hits, err := d.query.Search(ctx, probe, []string{store}, 3)
		if err != nil {
			fmt.Printf("    probe failed: %v\n", err)
			continue
		}
		for _, hit := range hits {
			fmt.Printf("    %.3f  %s (%s)\n", hit.Score, hit.Deal.Name, hit.Deal.Price)
		}
	}

	return nil
}
