// Package analytics contiene las agregaciones de costos del libro de stock:
// coste de compras, valor consumido y margen bruto del periodo.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/boulangerie-api/internal/application/dto"
	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// Cache puerto de caché de resultados (Redis en producción; nil = sin caché).
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// ReportUseCase calcula las agregaciones sobre el snapshot del libro.
// Nunca lee el almacén directamente: las cifras son consistentes con un único instante.
type ReportUseCase struct {
	snapshot *inventory.Snapshot
	sales    repository.SalesRepository
	cache    Cache
}

// NewReportUseCase construye el caso de uso. cache puede ser nil.
func NewReportUseCase(snapshot *inventory.Snapshot, sales repository.SalesRepository, cache Cache) *ReportUseCase {
	return &ReportUseCase{snapshot: snapshot, sales: sales, cache: cache}
}

// TotalPurchaseCost suma el precio total de las compras con fecha en [from, to].
// materialID vacío = todas las materias primas.
func (uc *ReportUseCase) TotalPurchaseCost(ctx context.Context, materialID string, from, to time.Time) (*dto.PurchaseCostDTO, error) {
	snap, err := uc.snapshot.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("purchase cost: %w", err)
	}
	total, count := purchaseCost(snap, materialID, from, to)
	return &dto.PurchaseCostDTO{MaterialID: materialID, From: from, To: to, Total: total, Count: count}, nil
}

// ConsumedValue valoriza consumos y mermas del periodo.
// Cada línea usa el precio guardado; sin él, |cantidad| * PMP actual y se marca como estimada.
func (uc *ReportUseCase) ConsumedValue(ctx context.Context, from, to time.Time) (*dto.ConsumedValueDTO, error) {
	snap, err := uc.snapshot.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("consumed value: %w", err)
	}
	return consumedValue(snap, from, to), nil
}

// GrossMargin ventas de boutique del periodo menos el valor consumido.
// El resultado se cachea por periodo hasta el siguiente movimiento.
func (uc *ReportUseCase) GrossMargin(ctx context.Context, from, to time.Time) (*dto.GrossMarginDTO, error) {
	load := func(ctx context.Context) (any, error) { return uc.grossMargin(ctx, from, to) }
	if uc.cache == nil {
		return uc.grossMargin(ctx, from, to)
	}
	key, err := uc.cache.BuildKey(ctx, "margin", from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return uc.grossMargin(ctx, from, to)
	}
	var out dto.GrossMarginDTO
	if err := uc.cache.FetchJSON(ctx, key, &out, load); err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *ReportUseCase) grossMargin(ctx context.Context, from, to time.Time) (*dto.GrossMarginDTO, error) {
	var (
		revenue decimal.Decimal
		snap    *inventory.SnapshotData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenue, err = uc.sales.SumRevenue(gctx, from, to)
		if err != nil {
			return fmt.Errorf("margin: ventas: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap, err = uc.snapshot.Current(gctx)
		if err != nil {
			return fmt.Errorf("margin: snapshot: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	consumed := consumedValue(snap, from, to)
	purchases, _ := purchaseCost(snap, "", from, to)
	margin := revenue.Sub(consumed.Total)
	pct := decimal.Zero
	if revenue.IsPositive() {
		pct = margin.Div(revenue).Mul(hundred).Round(2)
	}
	return &dto.GrossMarginDTO{
		From:          from,
		To:            to,
		Revenue:       revenue,
		ConsumedValue: consumed.Total,
		PurchaseCost:  purchases,
		Margin:        margin,
		MarginPct:     pct,
		HasEstimates:  consumed.EstimatedTotal.IsPositive(),
		SnapshotAt:    snap.LoadedAt,
	}, nil
}

// Refresh fuerza la recarga del snapshot.
func (uc *ReportUseCase) Refresh(ctx context.Context) (*dto.SnapshotInfoDTO, error) {
	snap, err := uc.snapshot.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SnapshotInfoDTO{LoadedAt: snap.LoadedAt, Materials: len(snap.Materials), Movements: len(snap.Movements)}, nil
}

func purchaseCost(snap *inventory.SnapshotData, materialID string, from, to time.Time) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, mv := range snap.Movements {
		if mv.Type != entity.MovementPurchase || !inPeriod(mv.Date, from, to) {
			continue
		}
		if materialID != "" && mv.MaterialID != materialID {
			continue
		}
		if mv.TotalPrice != nil {
			total = total.Add(*mv.TotalPrice)
		}
		count++
	}
	return total, count
}

func consumedValue(snap *inventory.SnapshotData, from, to time.Time) *dto.ConsumedValueDTO {
	out := &dto.ConsumedValueDTO{From: from, To: to, Total: decimal.Zero, EstimatedTotal: decimal.Zero, Lines: []dto.ConsumedLineDTO{}}
	for _, mv := range snap.Movements {
		if !mv.Type.CountsAsConsumed() || !inPeriod(mv.Date, from, to) {
			continue
		}
		line := dto.ConsumedLineDTO{
			MovementID:   mv.ID,
			MaterialID:   mv.MaterialID,
			MaterialName: mv.MaterialName,
			Type:         string(mv.Type),
			Date:         mv.Date,
			Quantity:     mv.Quantity,
		}
		if mv.TotalPrice != nil {
			line.Value = *mv.TotalPrice
		} else {
			// sin precio guardado: aproximación al PMP actual (cero si la materia prima ya no existe)
			pmp := decimal.Zero
			if m, ok := snap.Material(mv.MaterialID); ok {
				pmp = m.WeightedAverageCost
			}
			line.Value = mv.Quantity.Abs().Mul(pmp)
			line.IsEstimated = true
			out.EstimatedTotal = out.EstimatedTotal.Add(line.Value)
		}
		out.Total = out.Total.Add(line.Value)
		out.Lines = append(out.Lines, line)
	}
	sort.SliceStable(out.Lines, func(i, j int) bool { return out.Lines[i].Date.Before(out.Lines[j].Date) })
	return out
}
