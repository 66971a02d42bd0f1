package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks del libro dentro de RunTransaction del almacén.
type TxRunner struct {
	store repository.DocumentStore
}

// NewTxRunner construye el runner con el almacén.
func NewTxRunner(store repository.DocumentStore) *TxRunner {
	return &TxRunner{store: store}
}

// Run abre la transacción, ata los repositorios a ella y confirma si fn no falla.
// El reintento ante conflicto lo hace el almacén, que vuelve a llamar a fn.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	materials repository.RawMaterialTxRepository,
	movements repository.StockMovementTxRepository,
) error) error {
	return r.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return fn(ctx, &materialTxRepo{tx: tx}, &movementTxRepo{tx: tx})
	})
}

type materialTxRepo struct {
	tx repository.Tx
}

// GetForUpdate devuelve nil, nil si no existe.
func (r *materialTxRepo) GetForUpdate(_ context.Context, id string) (*entity.RawMaterial, error) {
	var d materialDoc
	if err := r.tx.Get(CollectionMaterials, id, &d); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw material for update: %w", err)
	}
	return d.entity(id), nil
}

func (r *materialTxRepo) SaveValuation(_ context.Context, m *entity.RawMaterial) error {
	err := r.tx.Update(CollectionMaterials, m.ID, map[string]any{
		"unit":                m.Unit,
		"currentStock":        m.CurrentStock,
		"weightedAverageCost": m.WeightedAverageCost,
		"totalValue":          m.TotalValue,
		"alertThreshold":      m.AlertThreshold,
		"updatedAt":           m.UpdatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("save valuation: %w", err)
	}
	return nil
}

func (r *materialTxRepo) PatchMetadata(_ context.Context, id string, p entity.MaterialPatch) error {
	fields := map[string]any{"updatedAt": p.UpdatedAt.UTC()}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Unit != nil {
		fields["unit"] = *p.Unit
	}
	if p.AlertThreshold != nil {
		fields["alertThreshold"] = *p.AlertThreshold
	}
	if p.PreferredSupplierID != nil {
		fields["preferredSupplierId"] = *p.PreferredSupplierID
	}
	if p.Active != nil {
		fields["active"] = *p.Active
	}
	if err := r.tx.Update(CollectionMaterials, id, fields); err != nil {
		return fmt.Errorf("patch raw material: %w", err)
	}
	return nil
}

type movementTxRepo struct {
	tx repository.Tx
}

func (r *movementTxRepo) Create(_ context.Context, mv *entity.StockMovement) error {
	id, err := r.tx.Create(CollectionMovements, toMovementDoc(mv))
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	mv.ID = id
	return nil
}
