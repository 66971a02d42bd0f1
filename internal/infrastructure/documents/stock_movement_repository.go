package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo lectura del libro de movimientos.
type StockMovementRepo struct {
	store repository.DocumentStore
}

// NewStockMovementRepository construye el adaptador de movimientos.
func NewStockMovementRepository(store repository.DocumentStore) *StockMovementRepo {
	return &StockMovementRepo{store: store}
}

// GetByID devuelve nil, nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	var d movementDoc
	if err := r.store.Get(ctx, CollectionMovements, id, &d); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return d.entity(id), nil
}

// ListAll devuelve el libro completo, más reciente primero.
func (r *StockMovementRepo) ListAll(ctx context.Context) ([]*entity.StockMovement, error) {
	return r.query(ctx, repository.Query{}.Sort("date", true).Sort("createdAt", true))
}

// ListByMaterial devuelve los movimientos de una materia prima, más reciente primero.
func (r *StockMovementRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockMovement, error) {
	return r.query(ctx, repository.Query{}.
		Where("materialId", repository.OpEq, materialID).
		Sort("date", true).
		Sort("createdAt", true))
}

func (r *StockMovementRepo) query(ctx context.Context, q repository.Query) ([]*entity.StockMovement, error) {
	docs, err := r.store.Query(ctx, CollectionMovements, q)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	list := make([]*entity.StockMovement, 0, len(docs))
	for _, doc := range docs {
		var d movementDoc
		if err := doc.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode stock movement %s: %w", doc.ID, err)
		}
		list = append(list, d.entity(doc.ID))
	}
	return list, nil
}
