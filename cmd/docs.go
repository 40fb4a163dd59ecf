package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/finboard/finboard/internal/config"
	"github.com/finboard/finboard/internal/docstore"
	"github.com/finboard/finboard/internal/warehouse"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List the indexed documents",
	RunE:  runDocs,
}

func init() {
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := cmd.Context()
	session, err := warehouse.Acquire(ctx, nil, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("acquiring warehouse session: %w", err)
	}
	defer session.Close()

	q := docstore.NewPGQuerier(session.Pool())
	paths, err := q.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no documents indexed")
		return nil
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
