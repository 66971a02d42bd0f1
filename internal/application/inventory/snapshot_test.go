package inventory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeMaterials struct {
	mu    sync.Mutex
	items []*entity.RawMaterial
	calls atomic.Int32
	gate  chan struct{} // si no es nil, List espera a que se cierre

	// readFirst: List copia los datos antes de esperar en gate (lectura ya hecha, respuesta en vuelo)
	readFirst bool
	err       error
}

func (f *fakeMaterials) Create(context.Context, *entity.RawMaterial) error { return nil }
func (f *fakeMaterials) GetByID(context.Context, string) (*entity.RawMaterial, error) {
	return nil, nil
}
func (f *fakeMaterials) Delete(context.Context, string) error { return nil }

func (f *fakeMaterials) List(context.Context) ([]*entity.RawMaterial, error) {
	f.calls.Add(1)
	if f.readFirst {
		items, err := f.read()
		if f.gate != nil {
			<-f.gate
		}
		return items, err
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.read()
}

func (f *fakeMaterials) read() ([]*entity.RawMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]*entity.RawMaterial(nil), f.items...), nil
}

func (f *fakeMaterials) set(items ...*entity.RawMaterial) {
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
}

type fakeMovements struct {
	items []*entity.StockMovement
}

func (f *fakeMovements) GetByID(context.Context, string) (*entity.StockMovement, error) {
	return nil, nil
}
func (f *fakeMovements) ListAll(context.Context) ([]*entity.StockMovement, error) {
	return f.items, nil
}
func (f *fakeMovements) ListByMaterial(context.Context, string) ([]*entity.StockMovement, error) {
	return nil, nil
}

func rawMaterial(id, name, stock, threshold, pmp string) *entity.RawMaterial {
	s, p := d(stock), d(pmp)
	return &entity.RawMaterial{
		ID:                  id,
		Name:                name,
		Unit:                entity.UnitKg,
		CurrentStock:        s,
		WeightedAverageCost: p,
		TotalValue:          s.Mul(p),
		AlertThreshold:      d(threshold),
		Active:              true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Snapshot
// ──────────────────────────────────────────────────────────────────────────────

func TestSnapshot_CurrentReutilizaCopiaVigente(t *testing.T) {
	ctx := context.Background()
	mats := &fakeMaterials{items: []*entity.RawMaterial{rawMaterial("a", "Farine", "10", "5", "1")}}
	snap := inventory.NewSnapshot(mats, &fakeMovements{}, nil)

	first, err := snap.Current(ctx)
	require.NoError(t, err)
	second, err := snap.Current(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second, "sin invalidación debe devolverse la misma copia")
	assert.Equal(t, int32(1), mats.calls.Load())
	m, ok := first.Material("a")
	require.True(t, ok)
	assert.Equal(t, "Farine", m.Name)
}

func TestSnapshot_InvalidateFuerzaRecarga(t *testing.T) {
	ctx := context.Background()
	mats := &fakeMaterials{items: []*entity.RawMaterial{rawMaterial("a", "Farine", "10", "5", "1")}}
	snap := inventory.NewSnapshot(mats, &fakeMovements{}, nil)

	_, err := snap.Current(ctx)
	require.NoError(t, err)

	mats.set(rawMaterial("a", "Farine", "10", "5", "1"), rawMaterial("b", "Beurre", "3", "2", "9"))
	require.NoError(t, snap.Invalidate(ctx))

	data, err := snap.Current(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Materials, 2, "la copia obsoleta no debe servirse tras invalidar")
	assert.Equal(t, int32(2), mats.calls.Load())
}

func TestSnapshot_RefreshConcurrenteHaceUnaSolaLectura(t *testing.T) {
	ctx := context.Background()
	mats := &fakeMaterials{gate: make(chan struct{})}
	snap := inventory.NewSnapshot(mats, &fakeMovements{}, nil)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]*inventory.SnapshotData, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := snap.Refresh(ctx)
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}

	// esperar a que la primera carga esté en curso antes de liberarla
	require.Eventually(t, func() bool { return mats.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(mats.gate)
	wg.Wait()

	assert.Equal(t, int32(1), mats.calls.Load(), "las recargas simultáneas deben agruparse")
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestSnapshot_InvalidacionDuranteCargaNoSeMarcaFresca(t *testing.T) {
	ctx := context.Background()
	mats := &fakeMaterials{gate: make(chan struct{})}
	snap := inventory.NewSnapshot(mats, &fakeMovements{}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := snap.Current(ctx)
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return mats.calls.Load() == 1 }, time.Second, time.Millisecond)

	// un movimiento se confirma mientras la carga lee el almacén
	snap.MarkStale()
	close(mats.gate)
	<-done

	_, err := snap.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), mats.calls.Load(), "la carga que empezó antes de invalidar no cuenta como fresca")
}

func TestSnapshot_RefreshTrasEscrituraNoReutilizaCargaAnterior(t *testing.T) {
	ctx := context.Background()
	mats := &fakeMaterials{
		items:     []*entity.RawMaterial{rawMaterial("a", "Farine", "10", "5", "1")},
		gate:      make(chan struct{}),
		readFirst: true,
	}
	snap := inventory.NewSnapshot(mats, &fakeMovements{}, nil)

	// una carga lee stock=10 y queda en vuelo
	early := make(chan *inventory.SnapshotData, 1)
	go func() {
		data, err := snap.Refresh(ctx)
		assert.NoError(t, err)
		early <- data
	}()
	require.Eventually(t, func() bool { return mats.calls.Load() == 1 }, time.Second, time.Millisecond)

	// se confirma un movimiento y después se pide recarga explícita
	mats.set(rawMaterial("a", "Farine", "99", "5", "1"))
	snap.MarkStale()
	late := make(chan *inventory.SnapshotData, 1)
	go func() {
		data, err := snap.Refresh(ctx)
		assert.NoError(t, err)
		late <- data
	}()
	require.Eventually(t, func() bool { return mats.calls.Load() == 2 }, time.Second, time.Millisecond,
		"la recarga posterior a la escritura debe leer de nuevo")
	close(mats.gate)

	stale := <-early
	m, _ := stale.Material("a")
	assert.True(t, m.CurrentStock.Equal(d("10")))

	fresh := <-late
	m, ok := fresh.Material("a")
	require.True(t, ok)
	assert.True(t, m.CurrentStock.Equal(d("99")), "el Refresh pedido tras la escritura debe verla")

	current, err := snap.Current(ctx)
	require.NoError(t, err)
	m, _ = current.Material("a")
	assert.True(t, m.CurrentStock.Equal(d("99")), "la carga antigua no debe reemplazar a la nueva")
	assert.Equal(t, int32(2), mats.calls.Load())
}

func TestSnapshot_ContextoCanceladoNoCancelaLaCarga(t *testing.T) {
	mats := &fakeMaterials{gate: make(chan struct{})}
	snap := inventory.NewSnapshot(mats, &fakeMovements{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := snap.Refresh(ctx)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return mats.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(mats.gate)
	data, err := snap.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestSnapshot_ErrorDeCarga(t *testing.T) {
	boom := errors.New("almacén caído")
	snap := inventory.NewSnapshot(&fakeMaterials{err: boom}, &fakeMovements{}, nil)

	_, err := snap.Current(context.Background())
	assert.ErrorIs(t, err, boom)
}
