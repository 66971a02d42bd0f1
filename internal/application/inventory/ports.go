package inventory

import (
	"context"

	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios
// atados a esa transacción. Ante un conflicto de escritura la función se vuelve a ejecutar
// completa con datos frescos; agotados los intentos devuelve domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		materials repository.RawMaterialTxRepository,
		movements repository.StockMovementTxRepository,
	) error) error
}

// Invalidator recibe el aviso de que el libro cambió (snapshot en memoria, caché de analítica).
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
