package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finboard/finboard/api"
	"github.com/finboard/finboard/internal/app"
	"github.com/finboard/finboard/internal/config"
)

var (
	flagAddr       string
	flagTrustProxy bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server exposing the dashboard data endpoints,
the question-answering endpoint, and signed document links.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", api.DefaultAddr, "server address (host:port)")
	serveCmd.Flags().BoolVar(&flagTrustProxy, "trust-proxy", false, "trust X-Real-IP/X-Forwarded-For headers")
	rootCmd.AddCommand(serveCmd)
}

// parseRateBurst reads FINBOARD_RATE_BURST from the environment.
// Returns 0 (use default) if unset or invalid.
func parseRateBurst() int {
	v := os.Getenv("FINBOARD_RATE_BURST")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// runServe initializes the application and starts the HTTP API server.
func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if err := validateAddr(flagAddr); err != nil {
		return fmt.Errorf("invalid address %q: %w", flagAddr, err)
	}
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting finboard server", "version", Version)

	a, err := app.Setup(ctx, cfg, nil, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	srv := api.NewServer(api.ServerConfig{
		Logger:       logger,
		Loader:       a.Loader,
		Docs:         a.Docs,
		Answerer:     a.Answer,
		DefaultModel: cfg.ModelName,
		Pool:         a.Session.Pool(),
		TrustProxy:   flagTrustProxy,
		RateBurst:    parseRateBurst(),
	})

	return srv.Run(ctx, flagAddr)
}
