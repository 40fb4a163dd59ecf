package market

import (
	"context"
	"sync"

	"github.com/finboard/finboard/internal/log"
)

// Querier defines the warehouse queries the loader depends on.
// The interface is defined by the consumer so tests can supply fakes.
type Querier interface {
	// StockFacts returns the long-format price facts for the fixed
	// ticker allow-list and the two dashboard measures.
	StockFacts(ctx context.Context) ([]Fact, error)

	// FxRates returns FX observations filtered to the fixed base
	// currency and minimum date.
	FxRates(ctx context.Context) ([]FxRecord, error)
}

// Loader materializes the two dashboard frames, at most once per process.
//
// The memoization is an explicit one-shot cell: the first successful
// Load latches the frames for the process lifetime; a failed Load is not
// cached, so the next interaction retries. There is no other
// invalidation. Loader is safe for concurrent use.
type Loader struct {
	q      Querier
	logger log.Logger

	mu     sync.Mutex
	loaded bool
	stocks []StockRecord
	fx     []FxRecord
}

// NewLoader creates a Loader over the given warehouse querier.
func NewLoader(q Querier, logger log.Logger) *Loader {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Loader{q: q, logger: logger}
}

// Load returns the stock and FX frames, querying the warehouse only on
// the first successful call. Callers must treat the returned slices as
// immutable; they are shared across calls.
func (l *Loader) Load(ctx context.Context) ([]StockRecord, []FxRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.stocks, l.fx, nil
	}

	facts, err := l.q.StockFacts(ctx)
	if err != nil {
		return nil, nil, err
	}

	fx, err := l.q.FxRates(ctx)
	if err != nil {
		return nil, nil, err
	}

	l.stocks = BuildStockFrame(facts)
	l.fx = fx
	l.loaded = true

	l.logger.Info("market data loaded",
		"stock_records", len(l.stocks),
		"fx_records", len(l.fx))

	return l.stocks, l.fx, nil
}
