package repository

import (
	"context"

	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de lectura del libro de movimientos.
// No hay Update ni Delete: el libro es de solo inserción.
type StockMovementRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	ListAll(ctx context.Context) ([]*entity.StockMovement, error)
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockMovement, error)
}

// StockMovementTxRepository inserta movimientos dentro de una transacción.
type StockMovementTxRepository interface {
	Create(ctx context.Context, mv *entity.StockMovement) error
}
