// Package docquery evalúa filtros y orden de repository.Query sobre documentos JSON.
// Lo usan los almacenes que no pueden delegar la consulta completa al motor.
package docquery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
)

// Apply filtra, ordena y limita docs según q.
func Apply(docs []repository.Document, q repository.Query) ([]repository.Document, error) {
	for _, f := range q.Filters {
		if err := ValidateFilter(f); err != nil {
			return nil, err
		}
	}
	out := make([]repository.Document, 0, len(docs))
	for _, d := range docs {
		ok, err := Match(d.Data, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	if err := Sort(out, q.OrderBy); err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Match indica si el documento cumple todos los filtros.
// Un campo ausente no cumple ningún filtro.
func Match(data json.RawMessage, filters []repository.Filter) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	fields, err := decodeFields(data)
	if err != nil {
		return false, err
	}
	for _, f := range filters {
		raw, ok := fields[f.Field]
		if !ok {
			return false, nil
		}
		ok, err := matchOne(raw, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ValidateFilter rechaza operadores desconocidos y OpIn sin slice.
func ValidateFilter(f repository.Filter) error {
	switch f.Op {
	case repository.OpEq, repository.OpNeq, repository.OpLt, repository.OpLte, repository.OpGt, repository.OpGte:
		return nil
	case repository.OpIn:
		v := reflect.ValueOf(f.Value)
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return fmt.Errorf("%w: el filtro %q con 'in' requiere una lista", domain.ErrInvalidInput, f.Field)
		}
		return nil
	default:
		return fmt.Errorf("%w: operador %q no soportado", domain.ErrInvalidInput, f.Op)
	}
}

func matchOne(raw json.RawMessage, f repository.Filter) (bool, error) {
	if err := ValidateFilter(f); err != nil {
		return false, err
	}
	if f.Op == repository.OpIn {
		v := reflect.ValueOf(f.Value)
		for i := 0; i < v.Len(); i++ {
			c, ok := compareTo(raw, v.Index(i).Interface())
			if ok && c == 0 {
				return true, nil
			}
		}
		return false, nil
	}
	c, ok := compareTo(raw, f.Value)
	if !ok {
		// tipos incompatibles: solo != se cumple
		return f.Op == repository.OpNeq, nil
	}
	switch f.Op {
	case repository.OpEq:
		return c == 0, nil
	case repository.OpNeq:
		return c != 0, nil
	case repository.OpLt:
		return c < 0, nil
	case repository.OpLte:
		return c <= 0, nil
	case repository.OpGt:
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

// compareTo compara el valor JSON raw con value interpretándolo según el tipo de value.
// ok=false si el campo no puede leerse con ese tipo.
func compareTo(raw json.RawMessage, value any) (int, bool) {
	if isNull(raw) {
		if value == nil {
			return 0, true
		}
		return 0, false
	}
	switch v := value.(type) {
	case nil:
		return 0, false
	case time.Time:
		t, ok := asTime(raw)
		if !ok {
			return 0, false
		}
		return t.Compare(v), true
	case *time.Time:
		if v == nil {
			return 0, false
		}
		return compareTo(raw, *v)
	case string:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		return compareStrings(s, v), true
	case bool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return 0, false
		}
		return compareBools(b, v), true
	case decimal.Decimal:
		n, ok := asDecimal(raw)
		if !ok {
			return 0, false
		}
		return n.Cmp(v), true
	case fmt.Stringer:
		return compareTo(raw, v.String())
	}
	// tipos con nombre sobre string o números (entity.Unit, int64...)
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return compareTo(raw, rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asDecimal(raw)
		if !ok {
			return 0, false
		}
		return n.Cmp(decimal.NewFromInt(rv.Int())), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := asDecimal(raw)
		if !ok {
			return 0, false
		}
		return n.Cmp(decimal.NewFromInt(int64(rv.Uint()))), true
	case reflect.Float32, reflect.Float64:
		n, ok := asDecimal(raw)
		if !ok {
			return 0, false
		}
		return n.Cmp(decimal.NewFromFloat(rv.Float())), true
	}
	return 0, false
}

// Sort ordena docs en el sitio según orders (estable; ausentes primero).
func Sort(docs []repository.Document, orders []repository.Order) error {
	if len(orders) == 0 {
		return nil
	}
	keys := make([]map[string]json.RawMessage, len(docs))
	for i, d := range docs {
		f, err := decodeFields(d.Data)
		if err != nil {
			return err
		}
		keys[i] = f
	}
	idx := make([]int, len(docs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for _, o := range orders {
			c := Compare(keys[idx[a]][o.Field], keys[idx[b]][o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	sorted := make([]repository.Document, len(docs))
	for i, j := range idx {
		sorted[i] = docs[j]
	}
	copy(docs, sorted)
	return nil
}

// Compare ordena dos valores JSON sin conocer su tipo: ausente/null < bool < número < fecha < texto.
// Las cadenas decimales ("12.50") se comparan como números.
func Compare(a, b json.RawMessage) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case rankBool:
		var x, y bool
		_ = json.Unmarshal(a, &x)
		_ = json.Unmarshal(b, &y)
		return compareBools(x, y)
	case rankNumber:
		x, _ := asDecimal(a)
		y, _ := asDecimal(b)
		return x.Cmp(y)
	case rankTime:
		x, _ := asTime(a)
		y, _ := asTime(b)
		return x.Compare(y)
	case rankString:
		var x, y string
		_ = json.Unmarshal(a, &x)
		_ = json.Unmarshal(b, &y)
		return compareStrings(x, y)
	case rankOther:
		return bytes.Compare(a, b)
	}
	return 0
}

const (
	rankNull = iota
	rankBool
	rankNumber
	rankTime
	rankString
	rankOther
)

func rank(raw json.RawMessage) int {
	if len(raw) == 0 || isNull(raw) {
		return rankNull
	}
	switch raw[0] {
	case 't', 'f':
		return rankBool
	case '"':
		if _, ok := asDecimal(raw); ok {
			return rankNumber
		}
		if _, ok := asTime(raw); ok {
			return rankTime
		}
		return rankString
	case '{', '[':
		return rankOther
	default:
		return rankNumber
	}
}

func decodeFields(data json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: decode document: %w", domain.ErrPersistence, err)
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// asDecimal acepta números JSON y cadenas con formato decimal (así serializa shopspring/decimal).
func asDecimal(raw json.RawMessage) (decimal.Decimal, bool) {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func asTime(raw json.RawMessage) (time.Time, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// Sum suma field en los documentos; los valores no numéricos se ignoran.
func Sum(docs []repository.Document, field string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range docs {
		fields, err := decodeFields(d.Data)
		if err != nil {
			return decimal.Zero, err
		}
		if n, ok := asDecimal(fields[field]); ok && !isNull(fields[field]) {
			total = total.Add(n)
		}
	}
	return total, nil
}
