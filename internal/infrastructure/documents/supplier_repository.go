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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación de SupplierRepository sobre el almacén de documentos.
type SupplierRepo struct {
	store repository.DocumentStore
}

func NewSupplierRepository(store repository.DocumentStore) *SupplierRepo {
	return &SupplierRepo{store: store}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	id, err := r.store.Create(ctx, CollectionSuppliers, toSupplierDoc(s))
	if err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	s.ID = id
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var d supplierDoc
	if err := r.store.Get(ctx, CollectionSuppliers, id, &d); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return d.entity(id), nil
}

func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	docs, err := r.store.GetAll(ctx, CollectionSuppliers)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	list := make([]*entity.Supplier, 0, len(docs))
	for _, doc := range docs {
		var d supplierDoc
		if err := doc.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode supplier %s: %w", doc.ID, err)
		}
		list = append(list, d.entity(doc.ID))
	}
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	return list, nil
}

// Update reescribe el proveedor completo (documento sin campos calculados).
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	err := r.store.RunTransaction(ctx, func(_ context.Context, tx repository.Tx) error {
		var current supplierDoc
		if err := tx.Get(CollectionSuppliers, s.ID, &current); err != nil {
			return err
		}
		return tx.Set(CollectionSuppliers, s.ID, toSupplierDoc(s))
	})
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionSuppliers, id); err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}
