package app

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/config"
	"github.com/finboard/finboard/internal/log"
	"github.com/finboard/finboard/internal/warehouse"
)

func TestAppClose_ZeroValue(t *testing.T) {
	// Close must be safe on a partially initialized App; Setup relies on
	// this for cleanup when initialization fails midway.
	a := &App{}
	assert.NoError(t, a.Close())

	a = &App{Logger: log.NewNop()}
	assert.NoError(t, a.Close())
}

func TestProvideWarehouse_NoProfile(t *testing.T) {
	cfg := &config.Config{}

	_, err := provideWarehouse(context.Background(), cfg, nil, log.NewNop())
	assert.ErrorIs(t, err, warehouse.ErrConfig)
}

func TestProvideWarehouse_AmbientSkipsMigrations(t *testing.T) {
	// pgxpool.New is lazy, so this never dials.
	ambient, err := pgxpool.New(context.Background(), "postgres://user:pw@127.0.0.1:1/db")
	require.NoError(t, err)
	defer ambient.Close()

	// No connection profile configured: an owned session would fail with
	// ErrConfig before migrating, so success proves the ambient path.
	session, err := provideWarehouse(context.Background(), &config.Config{}, ambient, log.NewNop())
	require.NoError(t, err)
	assert.False(t, session.Owned())
	assert.Same(t, ambient, session.Pool())
}
