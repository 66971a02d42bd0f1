package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/boulangerie-api/internal/application/dto"
	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

// MaterialUseCase casos de uso CRUD para materias primas.
// Stock, PMP y valor solo los fija el alta; después cambian vía movimientos.
// Las ediciones corren en la misma transacción que el libro para no pisar
// una conversión de unidad confirmada entre la lectura y la escritura.
type MaterialUseCase struct {
	repo         repository.RawMaterialRepository
	txRunner     inventory.TxRunner
	log          *logger.Logger
	invalidators []inventory.Invalidator
}

// NewMaterialUseCase construye el caso de uso. log puede ser nil.
func NewMaterialUseCase(
	repo repository.RawMaterialRepository,
	txRunner inventory.TxRunner,
	log *logger.Logger,
	invalidators ...inventory.Invalidator,
) *MaterialUseCase {
	return &MaterialUseCase{
		repo:         repo,
		txRunner:     txRunner,
		log:          logger.OrNop(log).Named("materials"),
		invalidators: invalidators,
	}
}

// Create da de alta una materia prima con el stock y el costo declarados.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	unit := entity.Unit(in.Unit)
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: unidad desconocida %q", domain.ErrInvalidInput, in.Unit)
	}
	if in.InitialCost.IsNegative() {
		return nil, fmt.Errorf("%w: el costo inicial no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.AlertThreshold.IsNegative() {
		return nil, fmt.Errorf("%w: el umbral de alerta no puede ser negativo", domain.ErrInvalidInput)
	}
	// el stock negativo solo puede salir de movimientos registrados
	if in.InitialStock.IsNegative() {
		return nil, fmt.Errorf("%w: el stock inicial no puede ser negativo", domain.ErrInvalidInput)
	}
	now := time.Now()
	m := &entity.RawMaterial{
		Name:                name,
		Category:            strings.TrimSpace(in.Category),
		Unit:                unit,
		CurrentStock:        in.InitialStock,
		WeightedAverageCost: in.InitialCost,
		TotalValue:          in.InitialStock.Mul(in.InitialCost),
		AlertThreshold:      in.AlertThreshold,
		PreferredSupplierID: in.PreferredSupplierID,
		Active:              true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	invalidate(ctx, uc.log, uc.invalidators)
	return ToMaterialResponse(m), nil
}

// GetByID obtiene una materia prima por ID.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: materia prima %s", domain.ErrNotFound, id)
	}
	return ToMaterialResponse(m), nil
}

// List lista materias primas ordenadas por nombre, con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.MaterialListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	from, to := page.Window(len(list))
	items := make([]dto.MaterialResponse, 0, to-from)
	for _, m := range list[from:to] {
		items = append(items, *ToMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	}, nil
}

// Update cambia solo metadatos. Cambiar la unidad aquí no reescala stock ni PMP
// (para eso está la conversión de unidad). Solo se escriben los campos informados.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	patch, err := metadataPatch(in)
	if err != nil {
		return nil, err
	}
	patch.UpdatedAt = time.Now()

	var updated *entity.RawMaterial
	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		materials repository.RawMaterialTxRepository,
		_ repository.StockMovementTxRepository,
	) error {
		m, err := materials.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("%w: materia prima %s", domain.ErrNotFound, id)
		}
		if err := materials.PatchMetadata(ctx, id, patch); err != nil {
			return err
		}
		patch.Apply(m)
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("material_id", id).Msg("metadatos actualizados")
	invalidate(ctx, uc.log, uc.invalidators)
	return ToMaterialResponse(updated), nil
}

func metadataPatch(in dto.UpdateMaterialRequest) (entity.MaterialPatch, error) {
	var p entity.MaterialPatch
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return p, fmt.Errorf("%w: el nombre no puede quedar vacío", domain.ErrInvalidInput)
		}
		p.Name = &name
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		p.Category = &category
	}
	if in.Unit != nil {
		unit := entity.Unit(*in.Unit)
		if !unit.Valid() {
			return p, fmt.Errorf("%w: unidad desconocida %q", domain.ErrInvalidInput, *in.Unit)
		}
		p.Unit = &unit
	}
	if in.AlertThreshold != nil {
		if in.AlertThreshold.IsNegative() {
			return p, fmt.Errorf("%w: el umbral de alerta no puede ser negativo", domain.ErrInvalidInput)
		}
		p.AlertThreshold = in.AlertThreshold
	}
	p.PreferredSupplierID = in.PreferredSupplierID
	p.Active = in.Active
	return p, nil
}

// Delete borra la materia prima. Sus movimientos quedan en el libro.
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, uc.log, uc.invalidators)
	return nil
}

// ToMaterialResponse convierte la entidad en su DTO de salida.
func ToMaterialResponse(m *entity.RawMaterial) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:                  m.ID,
		Name:                m.Name,
		Category:            m.Category,
		Unit:                string(m.Unit),
		CurrentStock:        m.CurrentStock,
		WeightedAverageCost: m.WeightedAverageCost,
		TotalValue:          m.TotalValue,
		AlertThreshold:      m.AlertThreshold,
		BelowThreshold:      m.BelowThreshold(),
		PreferredSupplierID: m.PreferredSupplierID,
		Active:              m.Active,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// invalidate avisa a las cachés; los errores no deshacen la escritura.
func invalidate(ctx context.Context, log *logger.Logger, invalidators []inventory.Invalidator) {
	for _, inv := range invalidators {
		if err := inv.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("no se pudo invalidar caché")
		}
	}
}
