package inventory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

// SnapshotData copia de materias primas y movimientos cargada en un instante.
// Es de solo lectura: nadie la modifica después de cargarla.
type SnapshotData struct {
	Materials []*entity.RawMaterial
	Movements []*entity.StockMovement
	LoadedAt  time.Time

	byID map[string]*entity.RawMaterial
}

// Material busca una materia prima del snapshot por id.
func (d *SnapshotData) Material(id string) (*entity.RawMaterial, bool) {
	m, ok := d.byID[id]
	return m, ok
}

// Snapshot caché explícita del libro para las agregaciones.
// Current devuelve la copia vigente (la carga si falta o está marcada como obsoleta);
// Refresh fuerza la recarga. Las recargas simultáneas se agrupan en una sola lectura.
type Snapshot struct {
	materials repository.RawMaterialRepository
	movements repository.StockMovementRepository
	log       *logger.Logger
	now       func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	data       *SnapshotData
	generation uint64 // se incrementa con cada MarkStale
	loadedGen  uint64
}

// NewSnapshot construye la caché vacía; la primera lectura la carga.
func NewSnapshot(materials repository.RawMaterialRepository, movements repository.StockMovementRepository, log *logger.Logger) *Snapshot {
	return &Snapshot{
		materials: materials,
		movements: movements,
		log:       logger.OrNop(log).Named("snapshot"),
		now:       time.Now,
	}
}

// Current devuelve el snapshot vigente, recargándolo si hace falta.
func (s *Snapshot) Current(ctx context.Context) (*SnapshotData, error) {
	s.mu.RLock()
	data, fresh := s.data, s.data != nil && s.loadedGen == s.generation
	s.mu.RUnlock()
	if fresh {
		return data, nil
	}
	return s.Refresh(ctx)
}

// Refresh recarga materias primas y movimientos desde el almacén.
// Las llamadas simultáneas comparten lectura solo dentro de la misma generación:
// un Refresh posterior a MarkStale nunca se une a una carga que empezó antes.
func (s *Snapshot) Refresh(ctx context.Context) (*SnapshotData, error) {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	ch := s.group.DoChan("snapshot:"+strconv.FormatUint(gen, 10), func() (any, error) {
		return s.load(context.WithoutCancel(ctx), gen)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*SnapshotData), nil
	}
}

// MarkStale marca el snapshot como obsoleto; la próxima lectura recarga.
func (s *Snapshot) MarkStale() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}

// Invalidate implementa Invalidator.
func (s *Snapshot) Invalidate(context.Context) error {
	s.MarkStale()
	return nil
}

func (s *Snapshot) load(ctx context.Context, gen uint64) (*SnapshotData, error) {
	materials, err := s.materials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	movements, err := s.movements.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	data := &SnapshotData{
		Materials: materials,
		Movements: movements,
		LoadedAt:  s.now(),
		byID:      make(map[string]*entity.RawMaterial, len(materials)),
	}
	for _, m := range materials {
		data.byID[m.ID] = m
	}

	s.mu.Lock()
	// una carga más antigua que termina tarde no reemplaza a una más nueva;
	// si alguien marcó obsoleto durante la carga, la siguiente lectura vuelve a cargar
	if s.data == nil || gen >= s.loadedGen {
		s.data = data
		s.loadedGen = gen
	}
	s.mu.Unlock()

	s.log.Debug().Int("materials", len(materials)).Int("movements", len(movements)).Msg("snapshot cargado")
	return data, nil
}
