package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finboard/finboard/internal/app"
	"github.com/finboard/finboard/internal/config"
)

var (
	flagModel     string
	flagNoContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the terminal",
	Long: `Answer a single question. By default the answer is grounded in the
indexed document corpus; pass --no-context to send the bare question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&flagModel, "model", "", "completion model (default from config)")
	askCmd.Flags().BoolVar(&flagNoContext, "no-context", false, "skip document context retrieval")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.Setup(ctx, cfg, nil, slog.Default())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Warn("shutdown error", "error", closeErr)
		}
	}()

	modelID := flagModel
	if modelID == "" {
		modelID = cfg.ModelName
	}

	question := strings.Join(args, " ")
	resp, err := a.Answer.Answer(ctx, question, modelID, !flagNoContext)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
	if resp.SourcePath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nSource: %s\n", resp.SourcePath)
	}
	return nil
}
