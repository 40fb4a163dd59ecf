package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finboard/finboard/db"
	"github.com/finboard/finboard/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending warehouse migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	profile, err := cfg.DefaultProfile()
	if err != nil {
		return fmt.Errorf("resolving connection profile: %w", err)
	}

	if err := db.Migrate(profile.URL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
