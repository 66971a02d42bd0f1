package analytics_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/boulangerie-api/internal/application/analytics"
	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/rediscache"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type fakeMaterials struct{ items []*entity.RawMaterial }

func (f *fakeMaterials) Create(context.Context, *entity.RawMaterial) error { return nil }
func (f *fakeMaterials) GetByID(context.Context, string) (*entity.RawMaterial, error) {
	return nil, nil
}
func (f *fakeMaterials) List(context.Context) ([]*entity.RawMaterial, error) { return f.items, nil }
func (f *fakeMaterials) Delete(context.Context, string) error { return nil }

type fakeMovements struct {
	items []*entity.StockMovement
	calls int
}

func (f *fakeMovements) GetByID(context.Context, string) (*entity.StockMovement, error) {
	return nil, nil
}
func (f *fakeMovements) ListAll(context.Context) ([]*entity.StockMovement, error) {
	f.calls++
	return f.items, nil
}
func (f *fakeMovements) ListByMaterial(context.Context, string) ([]*entity.StockMovement, error) {
	return nil, nil
}

type fakeSales struct {
	revenue decimal.Decimal
	from    time.Time
	to      time.Time
	calls   int
}

func (f *fakeSales) SumRevenue(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	f.calls++
	f.from, f.to = from, to
	return f.revenue, nil
}

var march = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return march.AddDate(0, 0, n-1).Add(7 * time.Hour) }

// ledger de marzo: harina (PMP 0.9) y mantequilla (PMP 10)
func fixture() (*fakeMaterials, *fakeMovements) {
	mats := &fakeMaterials{items: []*entity.RawMaterial{
		{ID: "farine", Name: "Farine", Unit: entity.UnitKg, CurrentStock: d("100"), WeightedAverageCost: d("0.9"), TotalValue: d("90"), Active: true},
		{ID: "beurre", Name: "Beurre", Unit: entity.UnitKg, CurrentStock: d("5"), WeightedAverageCost: d("10"), TotalValue: d("50"), Active: true},
	}}
	movs := &fakeMovements{items: []*entity.StockMovement{
		{ID: "m1", MaterialID: "farine", Type: entity.MovementPurchase, Quantity: d("100"), TotalPrice: ptr("80"), Date: day(2)},
		{ID: "m2", MaterialID: "beurre", Type: entity.MovementPurchase, Quantity: d("10"), TotalPrice: ptr("95"), Date: day(3)},
		{ID: "m3", MaterialID: "farine", Type: entity.MovementConsumption, Quantity: d("-20"), TotalPrice: ptr("16"), Date: day(5)},
		{ID: "m4", MaterialID: "beurre", Type: entity.MovementLoss, Quantity: d("-2"), Date: day(6)}, // histórico sin precio
		{ID: "m5", MaterialID: "beurre", Type: entity.MovementSupplierReturn, Quantity: d("-1"), TotalPrice: ptr("9.5"), Date: day(7)},
		{ID: "m6", MaterialID: "farine", Type: entity.MovementCorrection, Quantity: d("-3"), TotalPrice: ptr("2.7"), Date: day(8)},
		{ID: "m7", MaterialID: "farine", Type: entity.MovementPurchase, Quantity: d("50"), TotalPrice: ptr("45"), Date: march.AddDate(0, 1, 2)},
		{ID: "m8", MaterialID: "borrada", Type: entity.MovementConsumption, Quantity: d("-4"), Date: day(9)},
	}}
	return mats, movs
}

func newReport(t *testing.T, sales *fakeSales, cache analytics.Cache) (*analytics.ReportUseCase, *fakeMovements) {
	t.Helper()
	mats, movs := fixture()
	snap := inventory.NewSnapshot(mats, movs, nil)
	return analytics.NewReportUseCase(snap, sales, cache), movs
}

var (
	from = march
	to   = march.AddDate(0, 1, 0).Add(-time.Nanosecond)
)

// ──────────────────────────────────────────────────────────────────────────────
// TotalPurchaseCost
// ──────────────────────────────────────────────────────────────────────────────

func TestTotalPurchaseCost_SoloComprasDelPeriodo(t *testing.T) {
	uc, _ := newReport(t, &fakeSales{}, nil)
	ctx := context.Background()

	all, err := uc.TotalPurchaseCost(ctx, "", from, to)
	require.NoError(t, err)
	assert.True(t, all.Total.Equal(d("175")), "80 + 95; la compra de abril queda fuera")
	assert.Equal(t, 2, all.Count)

	flour, err := uc.TotalPurchaseCost(ctx, "farine", from, to)
	require.NoError(t, err)
	assert.True(t, flour.Total.Equal(d("80")))

	// extremos incluidos
	edge, err := uc.TotalPurchaseCost(ctx, "beurre", day(3), day(3))
	require.NoError(t, err)
	assert.True(t, edge.Total.Equal(d("95")))

	none, err := uc.TotalPurchaseCost(ctx, "sel", from, to)
	require.NoError(t, err)
	assert.True(t, none.Total.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// ConsumedValue
// ──────────────────────────────────────────────────────────────────────────────

func TestConsumedValue_ConsumosYMermasConEstimacion(t *testing.T) {
	uc, _ := newReport(t, &fakeSales{}, nil)

	got, err := uc.ConsumedValue(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, got.Lines, 3, "solo consumption y loss")

	assert.Equal(t, "m3", got.Lines[0].MovementID)
	assert.False(t, got.Lines[0].IsEstimated)
	assert.True(t, got.Lines[0].Value.Equal(d("16")))

	assert.Equal(t, "m4", got.Lines[1].MovementID)
	assert.True(t, got.Lines[1].IsEstimated, "sin precio guardado se valoriza al PMP actual")
	assert.True(t, got.Lines[1].Value.Equal(d("20")))

	assert.Equal(t, "m8", got.Lines[2].MovementID)
	assert.True(t, got.Lines[2].IsEstimated)
	assert.True(t, got.Lines[2].Value.IsZero(), "materia prima borrada: sin PMP de referencia")

	assert.True(t, got.Total.Equal(d("36")))
	assert.True(t, got.EstimatedTotal.Equal(d("20")))
}

func TestAgregaciones_IdempotentesSinMovimientosNuevos(t *testing.T) {
	uc, movs := newReport(t, &fakeSales{revenue: d("500")}, nil)
	ctx := context.Background()

	first, err := uc.ConsumedValue(ctx, from, to)
	require.NoError(t, err)
	second, err := uc.ConsumedValue(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	c1, err := uc.TotalPurchaseCost(ctx, "", from, to)
	require.NoError(t, err)
	c2, err := uc.TotalPurchaseCost(ctx, "", from, to)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	assert.Equal(t, 1, movs.calls, "todas las lecturas comparten el mismo snapshot")
}

// ──────────────────────────────────────────────────────────────────────────────
// GrossMargin
// ──────────────────────────────────────────────────────────────────────────────

func TestGrossMargin_VentasMenosConsumido(t *testing.T) {
	sales := &fakeSales{revenue: d("240")}
	uc, _ := newReport(t, sales, nil)

	got, err := uc.GrossMargin(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, got.Revenue.Equal(d("240")))
	assert.True(t, got.ConsumedValue.Equal(d("36")))
	assert.True(t, got.Margin.Equal(d("204")))
	assert.True(t, got.MarginPct.Equal(d("85")))
	assert.True(t, got.PurchaseCost.Equal(d("175")))
	assert.True(t, got.HasEstimates)
	assert.True(t, sales.from.Equal(from) && sales.to.Equal(to))
}

func TestGrossMargin_SinVentas(t *testing.T) {
	uc, _ := newReport(t, &fakeSales{revenue: decimal.Zero}, nil)

	got, err := uc.GrossMargin(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, got.MarginPct.IsZero())
	assert.True(t, got.Margin.Equal(d("-36")))
}

func TestGrossMargin_CacheadoHastaInvalidar(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := rediscache.New(client, time.Minute, nil)

	sales := &fakeSales{revenue: d("240")}
	uc, _ := newReport(t, sales, cache)

	first, err := uc.GrossMargin(ctx, from, to)
	require.NoError(t, err)
	sales.revenue = d("300")
	second, err := uc.GrossMargin(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, sales.calls, "la segunda consulta sale de Redis")
	assert.True(t, second.Margin.Equal(first.Margin))

	require.NoError(t, cache.Invalidate(ctx))
	third, err := uc.GrossMargin(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, sales.calls)
	assert.True(t, third.Margin.Equal(d("264")))
}

func TestRefresh_InformaTamañoDelSnapshot(t *testing.T) {
	uc, movs := newReport(t, &fakeSales{}, nil)

	info, err := uc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, info.Materials)
	assert.Equal(t, 8, info.Movements)
	assert.Equal(t, 1, movs.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// ParsePeriod
// ──────────────────────────────────────────────────────────────────────────────

func TestParsePeriod(t *testing.T) {
	now := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

	f, to, err := analytics.ParsePeriod("", "", now)
	require.NoError(t, err)
	assert.Equal(t, march, f, "por defecto desde el primer día del mes")
	assert.Equal(t, now, to)

	f, to, err = analytics.ParsePeriod("2026-03-01", "2026-03-10", now)
	require.NoError(t, err)
	assert.Equal(t, march, f)
	assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, 999999999, time.UTC), to, "to en fecha cubre el día completo")

	_, to, err = analytics.ParsePeriod("", "2026-03-10T12:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), to.UTC())

	_, _, err = analytics.ParsePeriod("2026-03-11", "2026-03-10", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = analytics.ParsePeriod("10/03/2026", "", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
