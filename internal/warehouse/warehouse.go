// Package warehouse provides access to the tabular data warehouse
// (PostgreSQL + pgvector) behind a two-tier session strategy: reuse an
// ambient connection pool when the host process supplies one, otherwise
// open a new pool from the configured default connection profile.
//
// The failure taxonomy is split into two sentinels so callers can tell
// configuration problems from handshake problems:
//   - ErrConfig: no usable connection profile could be resolved
//   - ErrConnect: the remote handshake failed
//
// There is no retry; acquisition either succeeds or fails once.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finboard/finboard/internal/config"
	"github.com/finboard/finboard/internal/log"
)

var (
	// ErrConfig indicates no connection profile could be resolved from
	// configuration (missing file, no profiles, or absent default).
	ErrConfig = errors.New("warehouse: no usable connection profile")

	// ErrConnect indicates the warehouse handshake failed.
	ErrConnect = errors.New("warehouse: connection failed")
)

// Pool configuration applied to owned sessions.
const (
	maxConns        = 10
	minConns        = 2
	maxConnLifetime = 30 * time.Minute
	maxConnIdleTime = 5 * time.Minute
	healthCheck     = 1 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Session is a handle to the warehouse query engine.
// Sessions built from a profile own their pool; ambient sessions do not,
// so Close never tears down a pool the caller still uses.
type Session struct {
	pool  *pgxpool.Pool
	owned bool
}

// Acquire obtains a warehouse session.
//
// When ambient is non-nil it is reused as-is (the host runtime already
// holds a live session). Otherwise the default connection profile is
// resolved from cfg and a new pool is opened and pinged.
func Acquire(ctx context.Context, ambient *pgxpool.Pool, cfg *config.Config, logger log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	if ambient != nil {
		logger.Debug("reusing ambient warehouse session")
		return &Session{pool: ambient, owned: false}, nil
	}

	profile, err := cfg.DefaultProfile()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	poolCfg, err := pgxpool.ParseConfig(profile.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("%w: parsing connection config: %v", ErrConfig, err)
	}

	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = minConns
	poolCfg.MaxConnLifetime = maxConnLifetime
	poolCfg.MaxConnIdleTime = maxConnIdleTime
	poolCfg.HealthCheckPeriod = healthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: creating connection pool: %v", ErrConnect, err)
	}

	// Verify connectivity up front to fail fast if the warehouse is unreachable.
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pinging %s:%d: %v", ErrConnect, profile.Host, profile.Port, err)
	}

	logger.Info("warehouse session opened",
		"profile", cfg.Options.DefaultConnection,
		"host", profile.Host,
		"database", profile.DBName)

	return &Session{pool: pool, owned: true}, nil
}

// Pool returns the underlying connection pool for query execution.
func (s *Session) Pool() *pgxpool.Pool {
	return s.pool
}

// Owned reports whether the session owns its pool (profile-built) or
// borrows an ambient one.
func (s *Session) Owned() bool {
	return s.owned
}

// Close releases the session. Ambient pools are left open for their owner.
func (s *Session) Close() {
	if s.owned && s.pool != nil {
		s.pool.Close()
	}
}
