package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/boulangerie-api/internal/infrastructure/badgerdb"
	"github.com/jhoicas/boulangerie-api/pkg/config"
)

func TestOpen_BadgerEnMemoria(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreBadger, InMemory: true, MaxTxAttempts: 3}}

	store, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*badgerdb.Store)
	assert.True(t, ok)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "mongo"}}

	_, err := Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}
