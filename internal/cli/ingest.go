package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewIngestCmd creates the 'ingest' command for indexing flyer documents.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <flyer.json> [flyer.json...]",
		Short: "Index one or more flyer documents into the deal store",
		Long: `Normalize flyer JSON documents and index their deals into the
configured vector store. Each store's collection is rebuilt from scratch,
so re-running ingest for the same store never duplicates deals.`,
		Example: `  dealsctl ingest flyers/metro.json
  dealsctl ingest flyers/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), args)
		},
	}

	return cmd
}

// runIngest indexes each document and prints a per-file report.
func runIngest(ctx context.Context, paths []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	var failed int
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", filepath.Base(path), err)
			failed++
			continue
		}

		report, err := d.indexer.IngestDocument(ctx, raw)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", filepath.Base(path), err)
			failed++
			continue
		}

		fmt.Printf("✓ %s: %d deals indexed for %s", filepath.Base(path), report.Indexed, report.Store)
		if report.Skipped > 0 {
			fmt.Printf(" (%d skipped)", report.Skipped)
		}
		fmt.Println()
		for _, w := range report.Warnings {
			fmt.Printf("    warning: %s\n", w)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}
