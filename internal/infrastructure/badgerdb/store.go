// Package badgerdb implementa repository.DocumentStore sobre Badger v4 (embebido).
// Cada documento es un valor JSON bajo la clave doc/<colección>/<id>; las transacciones
// son optimistas y se reintentan cuando Badger detecta un conflicto al hacer commit.
package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/docquery"
	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

var (
	_ repository.DocumentStore = (*Store)(nil)
	_ repository.Aggregator    = (*Store)(nil)
)

const (
	defaultMaxTxAttempts = 5
	baseBackoff          = 2 * time.Millisecond
)

// Options configuración del almacén.
type Options struct {
	Path          string
	InMemory      bool
	MaxTxAttempts int
	Logger        *logger.Logger
}

// Store almacén de documentos sobre Badger.
type Store struct {
	db          *badger.DB
	maxAttempts int
	log         *logger.Logger
	newID       func() string
}

// Open abre (o crea) la base Badger.
func Open(opts Options) (*Store, error) {
	log := logger.OrNop(opts.Logger).Named("badger")
	bopts := badger.DefaultOptions(opts.Path).WithLogger(badgerLogger{log: log})
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{log: log})
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %w", domain.ErrPersistence, err)
	}
	attempts := opts.MaxTxAttempts
	if attempts < 1 {
		attempts = defaultMaxTxAttempts
	}
	return &Store{db: db, maxAttempts: attempts, log: log, newID: func() string { return uuid.New().String() }}, nil
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}

func docKey(collection, id string) []byte {
	return []byte("doc/" + collection + "/" + id)
}

func collectionPrefix(collection string) []byte {
	return []byte("doc/" + collection + "/")
}

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

// Get lee un documento en dest.
func (s *Store) Get(ctx context.Context, collection, id string, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return (&tx{txn: txn}).Get(collection, id, dest)
	})
}

// GetAll devuelve todos los documentos de la colección, ordenados por id.
func (s *Store) GetAll(ctx context.Context, collection string) ([]repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var docs []repository.Document
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := collectionPrefix(collection)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return persistence("read value", err)
			}
			id := strings.TrimPrefix(string(item.Key()), string(prefix))
			docs = append(docs, repository.Document{ID: id, Data: val})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Create inserta un documento con id nuevo.
func (s *Store) Create(ctx context.Context, collection string, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var id string
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		id, err = (&tx{txn: txn, newID: s.newID}).Create(collection, doc)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update hace merge superficial de fields (transaccional, con reintento).
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.RunTransaction(ctx, func(_ context.Context, t repository.Tx) error {
		return t.Update(collection, id, fields)
	})
}

// Delete borra un documento existente.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		key := docKey(collection, id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
			}
			return persistence("get", err)
		}
		if err := txn.Delete(key); err != nil {
			return persistence("delete", err)
		}
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: delete %s/%s", domain.ErrConflict, collection, id)
	}
	return err
}

// Query recorre la colección y aplica filtros y orden en memoria.
func (s *Store) Query(ctx context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	docs, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	return docquery.Apply(docs, q)
}

// RunTransaction ejecuta fn en una transacción de lectura/escritura.
// Si el commit falla por conflicto se descarta todo y fn se vuelve a ejecutar desde cero.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, t repository.Tx) error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.runOnce(ctx, fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if attempt >= s.maxAttempts {
			s.log.Warn().Int("attempts", attempt).Msg("transacción abortada: conflictos agotados")
			return fmt.Errorf("%w: %d intentos", domain.ErrConflict, attempt)
		}
		s.log.Debug().Int("attempt", attempt).Msg("conflicto de escritura, reintentando")
		if err := sleepBackoff(ctx, attempt); err != nil {
			return err
		}
	}
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context, t repository.Tx) error) error {
	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(ctx, &tx{txn: txn, newID: s.newID}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return err
		}
		return persistence("commit transaction", err)
	}
	return nil
}

// sleepBackoff espera un tiempo aleatorio creciente con el número de intento.
func sleepBackoff(ctx context.Context, attempt int) error {
	ceiling := baseBackoff << min(attempt, 6)
	timer := time.NewTimer(rand.N(ceiling) + time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Sum suma un campo numérico de los documentos que cumplen q.
func (s *Store) Sum(ctx context.Context, collection, field string, q repository.Query) (decimal.Decimal, error) {
	docs, err := s.Query(ctx, collection, q)
	if err != nil {
		return decimal.Zero, err
	}
	return docquery.Sum(docs, field)
}
