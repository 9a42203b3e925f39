/*
Package main is the entry point for the dealsctl CLI.

dealsctl is the operator tool for the DealScope backend: it ingests
flyer JSON documents into the vector store and inspects the resulting
collections without going through the HTTP API.

Usage:
  dealsctl [command]

Available Commands:
  ingest      Index one or more flyer documents into the deal store
  verify      Verify deal store collections and configuration
  stores      List stores with indexed deal collections
  search      Search indexed deals by similarity
  help        Help about any command

Examples:
  # Index a weekly flyer
  dealsctl ingest flyers/metro.json

  # Check that every collection holds deals
  dealsctl verify --probe "chicken breast"
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dealscope/backend/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dealsctl",
		Short: "Operator tool for the DealScope deal store",
		Long: `dealsctl manages the DealScope vector store: it normalizes and
indexes flyer documents, lists indexed stores, and runs ad-hoc
similarity searches against the collections the API serves from.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(cli.NewIngestCmd())
	rootCmd.AddCommand(cli.NewVerifyCmd())
	rootCmd.AddCommand(cli.NewStoresCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
