package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStoresCmd creates the 'stores' command for listing indexed stores.
func NewStoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stores",
		Short:   "List stores with indexed deal collections",
		Example: `  dealsctl stores`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStores(cmd.Context())
		},
	}

	return cmd
}

func runStores(ctx context.Context) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	stores, err := d.store.ListStores(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stores: %w", err)
	}

	if len(stores) == 0 {
		fmt.Println("No stores indexed.")
		fmt.Println("Run 'dealsctl ingest <flyer.json>' to index a flyer.")
		return nil
	}

	for _, store := range stores {
		count, err := d.store.CountDeals(ctx, store)
		if err != nil {
			fmt.Printf("  %s\n", store)
			continue
		}
		fmt.Printf("  %s (%d deals)\n", store, count)
	}

	return nil
}
