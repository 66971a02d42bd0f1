// Package storage elige y abre el almacén de documentos según la configuración.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/badgerdb"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/postgres"
	"github.com/jhoicas/boulangerie-api/pkg/config"
	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

// Open devuelve el almacén configurado en STORE_DRIVER.
// Con postgres aplica además el esquema de la tabla de documentos.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.DocumentStore, error) {
	switch cfg.Store.Driver {
	case config.StoreBadger:
		store, err := badgerdb.Open(badgerdb.Options{
			Path:          cfg.Store.BadgerPath,
			InMemory:      cfg.Store.InMemory,
			MaxTxAttempts: cfg.Store.MaxTxAttempts,
			Logger:        log,
		})
		if err != nil {
			return nil, err
		}
		logger.OrNop(log).Info().
			Str("driver", config.StoreBadger).
			Str("path", cfg.Store.BadgerPath).
			Bool("in_memory", cfg.Store.InMemory).
			Msg("almacén de documentos abierto")
		return store, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool, postgres.StoreOptions{MaxTxAttempts: cfg.Store.MaxTxAttempts, Logger: log})
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("storage: driver %q no soportado", cfg.Store.Driver)
	}
}
