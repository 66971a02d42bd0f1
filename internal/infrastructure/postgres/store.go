package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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

// StoreOptions parámetros del almacén de documentos.
type StoreOptions struct {
	MaxTxAttempts int
	Logger        *logger.Logger
}

// Store almacén de documentos JSONB sobre PostgreSQL.
// Las transacciones corren en SERIALIZABLE y se reintentan ante 40001/40P01.
type Store struct {
	pool        *pgxpool.Pool
	maxAttempts int
	log         *logger.Logger
	newID       func() string
}

// NewStore construye el almacén con el pool.
func NewStore(pool *pgxpool.Pool, opts StoreOptions) *Store {
	attempts := opts.MaxTxAttempts
	if attempts < 1 {
		attempts = 5
	}
	return &Store{
		pool:        pool,
		maxAttempts: attempts,
		log:         logger.OrNop(opts.Logger).Named("postgres"),
		newID:       func() string { return uuid.New().String() },
	}
}

// Close cierra el pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Get lee un documento en dest.
func (s *Store) Get(ctx context.Context, collection, id string, dest any) error {
	return getDoc(ctx, s.pool, collection, id, dest, false)
}

// GetAll devuelve todos los documentos de la colección, ordenados por id.
func (s *Store) GetAll(ctx context.Context, collection string) ([]repository.Document, error) {
	return queryDocs(ctx, s.pool, `SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`, collection)
}

// Create inserta un documento con id nuevo.
func (s *Store) Create(ctx context.Context, collection string, doc any) (string, error) {
	id := s.newID()
	if err := insertDoc(ctx, s.pool, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// Update hace merge superficial de fields (operador || de JSONB).
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return updateDoc(ctx, s.pool, collection, id, fields)
}

// Delete borra un documento existente.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return persistence("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	return nil
}

// Query filtra en SQL; el orden y el límite se aplican con docquery para
// comparar igual que el almacén embebido.
func (s *Store) Query(ctx context.Context, collection string, q repository.Query) ([]repository.Document, error) {
	b := newWhereBuilder(collection)
	for _, f := range q.Filters {
		if err := b.add(f); err != nil {
			return nil, err
		}
	}
	docs, err := queryDocs(ctx, s.pool, `SELECT id, data FROM documents WHERE `+b.sql()+` ORDER BY id`, b.args...)
	if err != nil {
		return nil, err
	}
	if err := docquery.Sort(docs, q.OrderBy); err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// Sum suma un campo numérico en el motor (NUMERIC -> decimal vía pgx-shopspring-decimal).
func (s *Store) Sum(ctx context.Context, collection, field string, q repository.Query) (decimal.Decimal, error) {
	b := newWhereBuilder(collection)
	for _, f := range q.Filters {
		if err := b.add(f); err != nil {
			return decimal.Zero, err
		}
	}
	expr := typedExpr(b.field(field), kindNumeric)
	var total decimal.Decimal
	err := s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(`+expr+`), 0) FROM documents WHERE `+b.sql(), b.args...).Scan(&total)
	if err != nil {
		return decimal.Zero, persistence("sum documents", err)
	}
	return total, nil
}

// RunTransaction ejecuta fn en una transacción SERIALIZABLE con reintentos.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, t repository.Tx) error) error {
	for attempt := 1; ; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt >= s.maxAttempts {
			s.log.Warn().Int("attempts", attempt).Err(err).Msg("transacción abortada: conflictos agotados")
			return fmt.Errorf("%w: %d intentos", domain.ErrConflict, attempt)
		}
		s.log.Debug().Int("attempt", attempt).Msg("fallo de serialización, reintentando")
		timer := time.NewTimer(rand.N(time.Duration(attempt)*5*time.Millisecond) + time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context, t repository.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return persistence("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &pgTx{ctx: ctx, q: tx, newID: s.newID}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return persistence("commit transaction", err)
	}
	return nil
}

// pgTx adapta pgx.Tx a repository.Tx. Get bloquea la fila (FOR UPDATE).
type pgTx struct {
	ctx   context.Context
	q     Querier
	newID func() string
}

func (t *pgTx) Get(collection, id string, dest any) error {
	return getDoc(t.ctx, t.q, collection, id, dest, true)
}

func (t *pgTx) Set(collection, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = t.q.Exec(t.ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		collection, id, b)
	if err != nil {
		return persistence("set document", err)
	}
	return nil
}

func (t *pgTx) Create(collection string, doc any) (string, error) {
	id := t.newID()
	if err := insertDoc(t.ctx, t.q, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (t *pgTx) Update(collection, id string, fields map[string]any) error {
	return updateDoc(t.ctx, t.q, collection, id, fields)
}

func getDoc(ctx context.Context, q Querier, collection, id string, dest any, forUpdate bool) error {
	sql := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	var raw []byte
	if err := q.QueryRow(ctx, sql, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
		}
		return persistence("get document", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return persistence("decode "+collection+"/"+id, err)
	}
	return nil
}

func insertDoc(ctx context.Context, q Querier, collection, id string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if _, err := q.Exec(ctx, `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`, collection, id, b); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s/%s", domain.ErrDuplicate, collection, id)
		}
		return persistence("insert document", err)
	}
	return nil
}

func updateDoc(ctx context.Context, q Querier, collection, id string, fields map[string]any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	tag, err := q.Exec(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`, collection, id, b)
	if err != nil {
		return persistence("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, id)
	}
	return nil
}

func queryDocs(ctx context.Context, q Querier, sql string, args ...any) ([]repository.Document, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, persistence("query documents", err)
	}
	defer rows.Close()
	var docs []repository.Document
	for rows.Next() {
		var d repository.Document
		var raw []byte
		if err := rows.Scan(&d.ID, &raw); err != nil {
			return nil, persistence("scan document", err)
		}
		d.Data = raw
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, persistence("query documents", err)
	}
	return docs, nil
}
