package postgres

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/docquery"
)

// Expresiones tipadas sobre un campo JSONB; NULL si el valor guardado no es de ese tipo.
const (
	numericRe   = `^-?[0-9]+(\.[0-9]+)?([eE][-+]?[0-9]+)?$`
	timestampRe = `^[0-9]{4}-[0-9]{2}-[0-9]{2}T`
)

type valueKind int

const (
	kindText valueKind = iota
	kindBool
	kindNumeric
	kindTime
	kindNull
)

// whereBuilder acumula predicados y argumentos posicionales.
type whereBuilder struct {
	clauses []string
	args    []any
	fields  map[string]int // campo -> índice del parámetro con su nombre
}

func newWhereBuilder(collection string) *whereBuilder {
	return &whereBuilder{
		clauses: []string{"collection = $1"},
		args:    []any{collection},
		fields:  map[string]int{},
	}
}

func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// field devuelve el placeholder tipado con el nombre del campo (se reutiliza si ya existe).
func (b *whereBuilder) field(name string) string {
	if i, ok := b.fields[name]; ok {
		return fmt.Sprintf("$%d::text", i)
	}
	p := b.arg(name)
	b.fields[name] = len(b.args)
	return p + "::text"
}

func (b *whereBuilder) sql() string {
	return strings.Join(b.clauses, " AND ")
}

func (b *whereBuilder) add(f repository.Filter) error {
	if err := docquery.ValidateFilter(f); err != nil {
		return err
	}
	if f.Op == repository.OpIn {
		v := reflect.ValueOf(f.Value)
		if v.Len() == 0 {
			b.clauses = append(b.clauses, "FALSE")
			return nil
		}
		ors := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			ors = append(ors, b.compare(f.Field, repository.OpEq, v.Index(i).Interface()))
		}
		b.clauses = append(b.clauses, "("+strings.Join(ors, " OR ")+")")
		return nil
	}
	b.clauses = append(b.clauses, b.compare(f.Field, f.Op, f.Value))
	return nil
}

func (b *whereBuilder) compare(field string, op repository.Op, value any) string {
	fp := b.field(field)
	kind, normalized := classify(value)
	if kind == kindNull {
		if op == repository.OpEq {
			return fmt.Sprintf("jsonb_typeof(data->%s) = 'null'", fp)
		}
		return fmt.Sprintf("(data ? %s AND jsonb_typeof(data->%s) <> 'null')", fp, fp)
	}
	expr := typedExpr(fp, kind)
	vp := b.arg(normalized) + castFor(kind)
	if op == repository.OpNeq {
		return fmt.Sprintf("(data ? %s AND (%s IS NULL OR %s <> %s))", fp, expr, expr, vp)
	}
	return fmt.Sprintf("%s %s %s", expr, sqlOp(op), vp)
}

func typedExpr(fp string, kind valueKind) string {
	switch kind {
	case kindBool:
		return fmt.Sprintf("(CASE WHEN jsonb_typeof(data->%[1]s) = 'boolean' THEN (data->>%[1]s)::boolean END)", fp)
	case kindNumeric:
		return fmt.Sprintf("(CASE WHEN data->>%[1]s ~ '%[2]s' THEN (data->>%[1]s)::numeric END)", fp, numericRe)
	case kindTime:
		return fmt.Sprintf("(CASE WHEN jsonb_typeof(data->%[1]s) = 'string' AND data->>%[1]s ~ '%[2]s' THEN (data->>%[1]s)::timestamptz END)", fp, timestampRe)
	default:
		return fmt.Sprintf(`(CASE WHEN jsonb_typeof(data->%[1]s) = 'string' THEN data->>%[1]s END) COLLATE "C"`, fp)
	}
}

func castFor(kind valueKind) string {
	switch kind {
	case kindBool:
		return "::boolean"
	case kindNumeric:
		return "::numeric"
	case kindTime:
		return "::timestamptz"
	default:
		return "::text"
	}
}

func sqlOp(op repository.Op) string {
	switch op {
	case repository.OpEq:
		return "="
	case repository.OpNeq:
		return "<>"
	default:
		return string(op)
	}
}

// classify decide el tipo de comparación por el tipo Go del valor del filtro.
func classify(value any) (valueKind, any) {
	switch v := value.(type) {
	case nil:
		return kindNull, nil
	case time.Time:
		return kindTime, v
	case *time.Time:
		if v == nil {
			return kindNull, nil
		}
		return kindTime, *v
	case decimal.Decimal:
		return kindNumeric, v
	case bool:
		return kindBool, v
	case string:
		return kindText, v
	case fmt.Stringer:
		return kindText, v.String()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindNumeric, decimal.NewFromInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindNumeric, decimal.NewFromInt(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return kindNumeric, decimal.NewFromFloat(rv.Float())
	default:
		return kindText, rv.String()
	}
}
