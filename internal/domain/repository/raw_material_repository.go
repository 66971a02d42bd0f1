package repository

import (
	"context"

	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
)

// RawMaterialRepository define el puerto de persistencia para materias primas (DIP).
// Las modificaciones de una materia prima existente van por RawMaterialTxRepository.
type RawMaterialRepository interface {
	Create(ctx context.Context, m *entity.RawMaterial) error
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
	List(ctx context.Context) ([]*entity.RawMaterial, error)
	Delete(ctx context.Context, id string) error
}

// RawMaterialTxRepository opera sobre materias primas dentro de una transacción.
type RawMaterialTxRepository interface {
	// GetForUpdate lee la materia prima registrando la lectura para detectar conflictos.
	GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error)
	// SaveValuation persiste stock, PMP, valor, unidad y umbral.
	SaveValuation(ctx context.Context, m *entity.RawMaterial) error
	// PatchMetadata escribe solo los campos informados en el parche.
	PatchMetadata(ctx context.Context, id string, p entity.MaterialPatch) error
}
