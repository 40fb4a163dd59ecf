package warehouse

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/config"
	"github.com/finboard/finboard/internal/log"
)

func TestAcquire_AmbientSessionReused(t *testing.T) {
	// pgxpool connects lazily, so a pool to an unreachable address is a
	// valid stand-in for the host runtime's ambient session.
	ambient, err := pgxpool.New(context.Background(), "host=localhost port=1 user=x dbname=x sslmode=disable")
	require.NoError(t, err)
	defer ambient.Close()

	s, err := Acquire(context.Background(), ambient, &config.Config{}, log.NewNop())
	require.NoError(t, err)

	assert.Same(t, ambient, s.Pool())
	assert.False(t, s.Owned())

	// Closing a borrowed session must not close the ambient pool.
	s.Close()
	assert.NotPanics(t, func() { _ = ambient.Stat() })
}

func TestAcquire_NoAmbientNoProfiles(t *testing.T) {
	cfg := &config.Config{}

	_, err := Acquire(context.Background(), nil, cfg, log.NewNop())
	assert.ErrorIs(t, err, ErrConfig)
}

func TestAcquire_NoAmbientProfileAbsent(t *testing.T) {
	cfg := &config.Config{
		Connections: map[string]config.ConnectionProfile{
			"local": {Host: "localhost", Port: 5432},
		},
		Options: config.Options{DefaultConnection: "prod"},
	}

	_, err := Acquire(context.Background(), nil, cfg, log.NewNop())
	assert.ErrorIs(t, err, ErrConfig)
	assert.NotErrorIs(t, err, ErrConnect)
}
