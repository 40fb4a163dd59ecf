package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/finboard/finboard/db"
	"github.com/finboard/finboard/internal/answer"
	"github.com/finboard/finboard/internal/completion"
	"github.com/finboard/finboard/internal/config"
	"github.com/finboard/finboard/internal/docstore"
	"github.com/finboard/finboard/internal/log"
	"github.com/finboard/finboard/internal/market"
	"github.com/finboard/finboard/internal/observability"
	"github.com/finboard/finboard/internal/rag"
	"github.com/finboard/finboard/internal/warehouse"
)

// Setup creates and initializes the application.
//
// ambient is an already-open warehouse pool supplied by a host process;
// pass nil to open one from the configured default connection profile.
// Returns an App with embedded cleanup, call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, ambient *pgxpool.Pool, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing must be registered before Genkit initialization so the
	// span processor is in place for its TracerProvider.
	a.otelCleanup = observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Otel.Endpoint,
		Environment: cfg.Otel.Environment,
		ServiceName: cfg.Otel.ServiceName,
	})

	session, err := provideWarehouse(ctx, cfg, ambient, logger)
	if err != nil {
		return nil, err
	}
	a.Session = session

	g, embedder, err := provideGenkit(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Genkit = g
	a.Embedder = embedder

	pool := session.Pool()
	a.Loader = market.NewLoader(market.NewPGQuerier(pool), logger)
	a.Retriever = rag.New(rag.NewPGQuerier(pool), embedder, logger)
	a.Completion = completion.New(g, logger)
	a.Docs = docstore.New(
		docstore.NewPGQuerier(pool),
		[]byte(cfg.SigningSecret),
		time.Duration(cfg.LinkTTLSeconds)*time.Second,
		logger,
	)
	a.Answer = answer.New(a.Retriever, a.Completion, a.Docs, cfg.TopK, logger)

	// Warm the market data frames in the background so the first
	// dashboard request does not pay the warehouse round trip. A failed
	// warm-up is not cached; the first request simply retries.
	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	eg, egCtx := errgroup.WithContext(bgCtx)
	a.background = eg
	eg.Go(func() error {
		if _, _, err := a.Loader.Load(egCtx); err != nil {
			logger.Warn("market data warm-up failed", "error", err)
		}
		return nil
	})

	return a, nil
}

// provideWarehouse acquires the warehouse session, running migrations
// first when we are about to open our own pool. Ambient sessions belong
// to a host that manages its own schema.
func provideWarehouse(ctx context.Context, cfg *config.Config, ambient *pgxpool.Pool, logger log.Logger) (*warehouse.Session, error) {
	if ambient == nil {
		profile, err := cfg.DefaultProfile()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", warehouse.ErrConfig, err)
		}
		if err := db.Migrate(profile.URL()); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	session, err := warehouse.Acquire(ctx, ambient, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("acquiring warehouse session: %w", err)
	}
	return session, nil
}

// provideGenkit initializes Genkit with the Google AI plugin and looks
// up the configured embedder.
func provideGenkit(ctx context.Context, cfg *config.Config) (*genkit.Genkit, ai.Embedder, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, nil, errors.New("initializing genkit with googleai provider")
	}

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}

	return g, embedder, nil
}
