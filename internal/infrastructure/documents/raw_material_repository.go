package documents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
)

var _ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)

// RawMaterialRepo implementación de RawMaterialRepository sobre el almacén de documentos.
type RawMaterialRepo struct {
	store repository.DocumentStore
}

// NewRawMaterialRepository construye el adaptador de materias primas.
func NewRawMaterialRepository(store repository.DocumentStore) *RawMaterialRepo {
	return &RawMaterialRepo{store: store}
}

// Create persiste la materia prima y asigna su ID.
func (r *RawMaterialRepo) Create(ctx context.Context, m *entity.RawMaterial) error {
	id, err := r.store.Create(ctx, CollectionMaterials, toMaterialDoc(m))
	if err != nil {
		return fmt.Errorf("create raw material: %w", err)
	}
	m.ID = id
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *RawMaterialRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	var d materialDoc
	if err := r.store.Get(ctx, CollectionMaterials, id, &d); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw material: %w", err)
	}
	return d.entity(id), nil
}

// List devuelve todas las materias primas ordenadas por nombre.
func (r *RawMaterialRepo) List(ctx context.Context) ([]*entity.RawMaterial, error) {
	docs, err := r.store.GetAll(ctx, CollectionMaterials)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	list := make([]*entity.RawMaterial, 0, len(docs))
	for _, doc := range docs {
		var d materialDoc
		if err := doc.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode raw material %s: %w", doc.ID, err)
		}
		list = append(list, d.entity(doc.ID))
	}
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	return list, nil
}

// Delete borrado físico; los movimientos históricos se conservan.
func (r *RawMaterialRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionMaterials, id); err != nil {
		return fmt.Errorf("delete raw material: %w", err)
	}
	return nil
}
