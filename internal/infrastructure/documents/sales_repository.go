package documents

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
	"github.com/jhoicas/boulangerie-api/internal/infrastructure/docquery"
)

var _ repository.SalesRepository = (*SalesRepo)(nil)

// SalesRepo lee los cierres de turno de la boutique.
type SalesRepo struct {
	store repository.DocumentStore
}

func NewSalesRepository(store repository.DocumentStore) *SalesRepo {
	return &SalesRepo{store: store}
}

// Record guarda un cierre de turno (lo usan la carga inicial y los tests).
func (r *SalesRepo) Record(ctx context.Context, s *entity.ShopSale) error {
	id, err := r.store.Create(ctx, CollectionSales, toSaleDoc(s))
	if err != nil {
		return fmt.Errorf("record shop sale: %w", err)
	}
	s.ID = id
	return nil
}

// SumRevenue suma el neto de los turnos con fecha en [from, to].
// Si el almacén sabe agregar en el motor se le delega la suma.
func (r *SalesRepo) SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	q := repository.Query{}.
		Where("shiftDate", repository.OpGte, from).
		Where("shiftDate", repository.OpLte, to)

	if agg, ok := r.store.(repository.Aggregator); ok {
		total, err := agg.Sum(ctx, CollectionSales, "netTotal", q)
		if err != nil {
			return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
		}
		return total, nil
	}
	docs, err := r.store.Query(ctx, CollectionSales, q)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	return docquery.Sum(docs, "netTotal")
}
