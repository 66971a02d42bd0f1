package docquery_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/docquery"
)

type mv struct {
	MaterialID string          `json:"materialId"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Date       time.Time       `json:"date"`
	Validated  bool            `json:"validated"`
}

func doc(t *testing.T, id string, v any) repository.Document {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return repository.Document{ID: id, Data: b}
}

func day(n int) time.Time { return time.Date(2025, 3, n, 8, 0, 0, 0, time.UTC) }

func fixtures(t *testing.T) []repository.Document {
	return []repository.Document{
		doc(t, "a", mv{"farine", "purchase", decimal.RequireFromString("100"), day(1), true}),
		doc(t, "b", mv{"farine", "consumption", decimal.RequireFromString("20"), day(5), true}),
		doc(t, "c", mv{"beurre", "loss", decimal.RequireFromString("2.5"), day(3), false}),
		doc(t, "d", mv{"farine", "purchase", decimal.RequireFromString("50"), day(9), true}),
	}
}

func ids(docs []repository.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestApply_FiltroIgualdadYOrdenPorFecha(t *testing.T) {
	q := repository.Query{}.
		Where("materialId", repository.OpEq, "farine").
		Sort("date", true)

	got, err := docquery.Apply(fixtures(t), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "a"}, ids(got))
}

func TestApply_RangoDeFechas(t *testing.T) {
	q := repository.Query{}.
		Where("date", repository.OpGte, day(3)).
		Where("date", repository.OpLte, day(5)).
		Sort("date", false)

	got, err := docquery.Apply(fixtures(t), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(got))
}

func TestApply_DecimalesComoNumeros(t *testing.T) {
	// "100" < "20" como texto, pero no como número
	got, err := docquery.Apply(fixtures(t), repository.Query{}.Where("quantity", repository.OpGt, decimal.NewFromInt(20)))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "d"}, ids(got))

	got, err = docquery.Apply(fixtures(t), repository.Query{}.Sort("quantity", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "d", "a"}, ids(got))

	got, err = docquery.Apply(fixtures(t), repository.Query{}.Where("quantity", repository.OpLt, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(got))
}

func TestApply_InBoolYLimite(t *testing.T) {
	q := repository.Query{}.
		Where("type", repository.OpIn, []string{"consumption", "loss"}).
		Where("validated", repository.OpEq, true)
	got, err := docquery.Apply(fixtures(t), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(got))

	got, err = docquery.Apply(fixtures(t), repository.Query{Limit: 2}.Sort("date", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(got))
}

func TestApply_CampoAusenteNoCumple(t *testing.T) {
	got, err := docquery.Apply(fixtures(t), repository.Query{}.Where("supplierId", repository.OpEq, "x"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApply_OperadorDesconocido(t *testing.T) {
	_, err := docquery.Apply(fixtures(t), repository.Query{}.Where("type", "like", "p%"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = docquery.Apply(fixtures(t), repository.Query{}.Where("type", repository.OpIn, "purchase"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompare_Rangos(t *testing.T) {
	assert.Equal(t, -1, docquery.Compare(nil, json.RawMessage(`1`)), "ausente va primero")
	assert.Equal(t, -1, docquery.Compare(json.RawMessage(`"9.5"`), json.RawMessage(`10`)))
	assert.Equal(t, 1, docquery.Compare(json.RawMessage(`"b"`), json.RawMessage(`"a"`)))
	assert.Equal(t, 0, docquery.Compare(json.RawMessage(`true`), json.RawMessage(`true`)))
}

func TestMatch_DocumentoIlegible(t *testing.T) {
	_, err := docquery.Match(json.RawMessage(`[1, 2]`), []repository.Filter{{Field: "type", Op: repository.OpEq, Value: "purchase"}})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
