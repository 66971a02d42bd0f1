package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/application/dto"
)

// LowStockUseCase genera la lista de reposición: materias primas activas en o
// por debajo de su umbral de alerta, con la cantidad sugerida de pedido.
type LowStockUseCase struct {
	snapshot *Snapshot
	factor   decimal.Decimal
}

// NewLowStockUseCase construye el caso de uso. factor lleva el stock objetivo a umbral * factor.
func NewLowStockUseCase(snapshot *Snapshot, factor float64) *LowStockUseCase {
	f := decimal.NewFromFloat(factor)
	if f.LessThan(decimal.NewFromInt(1)) {
		f = decimal.NewFromInt(1)
	}
	return &LowStockUseCase{snapshot: snapshot, factor: f}
}

// List devuelve las sugerencias ordenadas por urgencia (mayor déficit relativo primero).
func (uc *LowStockUseCase) List(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	snap, err := uc.snapshot.Current(ctx)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		item  dto.LowStockItemDTO
		ratio decimal.Decimal // déficit / umbral
	}
	var rows []ranked
	for _, m := range snap.Materials {
		if !m.Active || !m.BelowThreshold() {
			continue
		}
		target := m.AlertThreshold.Mul(uc.factor)
		qty := target.Sub(m.CurrentStock)
		if qty.IsNegative() {
			qty = decimal.Zero
		}
		ratio := decimal.NewFromInt(1)
		if m.AlertThreshold.IsPositive() {
			ratio = m.AlertThreshold.Sub(m.CurrentStock).DivRound(m.AlertThreshold, 6)
		}
		rows = append(rows, ranked{
			item: dto.LowStockItemDTO{
				MaterialID:          m.ID,
				Name:                m.Name,
				Unit:                string(m.Unit),
				CurrentStock:        m.CurrentStock,
				AlertThreshold:      m.AlertThreshold,
				TargetStock:         target,
				SuggestedOrderQty:   qty,
				WeightedAverageCost: m.WeightedAverageCost,
				EstimatedOrderCost:  qty.Mul(m.WeightedAverageCost).Round(2),
				PreferredSupplierID: m.PreferredSupplierID,
			},
			ratio: ratio,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].ratio.Equal(rows[j].ratio) {
			return rows[i].ratio.GreaterThan(rows[j].ratio)
		}
		return rows[i].item.EstimatedOrderCost.GreaterThan(rows[j].item.EstimatedOrderCost)
	})

	items := make([]dto.LowStockItemDTO, len(rows))
	for i, r := range rows {
		items[i] = r.item
		items[i].Priority = i + 1
	}
	return items, nil
}
