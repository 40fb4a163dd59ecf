// Package app provides application initialization and dependency wiring.
//
// App is the container that holds every initialized component: the
// warehouse session, Genkit runtime, market data loader, retrieval
// pipeline, and document store. Setup builds it; Close releases it.
package app

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/sync/errgroup"

	"github.com/finboard/finboard/internal/answer"
	"github.com/finboard/finboard/internal/completion"
	"github.com/finboard/finboard/internal/config"
	"github.com/finboard/finboard/internal/docstore"
	"github.com/finboard/finboard/internal/log"
	"github.com/finboard/finboard/internal/market"
	"github.com/finboard/finboard/internal/rag"
	"github.com/finboard/finboard/internal/warehouse"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit     *genkit.Genkit
	Embedder   ai.Embedder
	Session    *warehouse.Session
	Loader     *market.Loader
	Retriever  *rag.Retriever
	Completion *completion.Client
	Docs       *docstore.Store
	Answer     *answer.Service

	// Lifecycle management
	otelCleanup func()
	cancel      context.CancelFunc
	background  *errgroup.Group
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	// 1. Stop background work and wait for it to drain.
	if a.cancel != nil {
		a.cancel()
	}
	if a.background != nil {
		// Warm-up failures were already logged; shutdown ignores them.
		_ = a.background.Wait()
	}

	// 2. Release the warehouse session (ambient pools stay open).
	if a.Session != nil {
		a.Session.Close()
	}

	// 3. Flush pending trace spans.
	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
