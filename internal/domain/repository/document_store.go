package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain"
)

// Op es un operador de comparación admitido en los filtros de consulta.
type Op string

const (
	OpEq  Op = "=="
	OpNeq Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpIn  Op = "in" // Value debe ser un slice
)

// Filter compara un campo de primer nivel del documento con un valor.
// Value puede ser string, bool, número, decimal.Decimal, time.Time o un slice de ellos (OpIn).
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Order ordena por un campo de primer nivel.
type Order struct {
	Field string
	Desc  bool
}

// Query describe una consulta sobre una colección.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int // 0 = sin límite
}

// Where agrega un filtro y devuelve la consulta (encadenable).
func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

// Sort agrega un criterio de orden.
func (q Query) Sort(field string, desc bool) Query {
	q.OrderBy = append(append([]Order(nil), q.OrderBy...), Order{Field: field, Desc: desc})
	return q
}

// Document es un registro genérico: id más su contenido JSON.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode deserializa el contenido en dest. Un documento ilegible es un fallo del almacén.
func (d Document) Decode(dest any) error {
	if err := json.Unmarshal(d.Data, dest); err != nil {
		return fmt.Errorf("%w: decode %s: %w", domain.ErrPersistence, d.ID, err)
	}
	return nil
}

// DocumentStore es el puerto de persistencia genérico (colecciones de documentos JSON).
// Get/Update/Delete devuelven domain.ErrNotFound si el id no existe; los fallos del
// almacén se envuelven con domain.ErrPersistence.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string, dest any) error
	GetAll(ctx context.Context, collection string) ([]Document, error)
	// Create genera el id (uuid) y lo devuelve.
	Create(ctx context.Context, collection string, doc any) (string, error)
	// Update hace un merge superficial de fields sobre el documento.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// RunTransaction ejecuta fn en una transacción; ante un conflicto de escritura
	// reintenta fn completa. Agotados los intentos devuelve domain.ErrConflict.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// Tx son los accesos de lectura/escritura dentro de una transacción.
// Las lecturas quedan registradas para la detección de conflictos.
type Tx interface {
	Get(collection, id string, dest any) error
	Set(collection, id string, doc any) error
	Create(collection string, doc any) (string, error)
	Update(collection, id string, fields map[string]any) error
}

// Aggregator lo implementan los almacenes capaces de sumar un campo numérico
// (por ejemplo, totales de caja) sin devolver los documentos.
type Aggregator interface {
	Sum(ctx context.Context, collection, field string, q Query) (decimal.Decimal, error)
}
