package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/boulangerie-api/internal/application/dto"
	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
)

// MovementUseCase consulta del libro de movimientos (el registro lo hace LedgerUseCase).
type MovementUseCase struct {
	repo repository.StockMovementRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(repo repository.StockMovementRepository) *MovementUseCase {
	return &MovementUseCase{repo: repo}
}

// List devuelve los movimientos, más reciente primero; materialID vacío = todos.
func (uc *MovementUseCase) List(ctx context.Context, materialID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	var (
		list []*entity.StockMovement
		err  error
	)
	if materialID = strings.TrimSpace(materialID); materialID != "" {
		list, err = uc.repo.ListByMaterial(ctx, materialID)
	} else {
		list, err = uc.repo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	from, to := page.Window(len(list))
	items := make([]dto.MovementResponse, 0, to-from)
	for _, mv := range list[from:to] {
		items = append(items, ToMovementResponse(mv))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	}, nil
}

// GetByID obtiene un movimiento por ID.
func (uc *MovementUseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mv == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	resp := ToMovementResponse(mv)
	return &resp, nil
}

// ToMovementResponse convierte una línea del libro en su DTO de salida.
func ToMovementResponse(mv *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                mv.ID,
		MaterialID:        mv.MaterialID,
		MaterialName:      mv.MaterialName,
		Type:              string(mv.Type),
		Quantity:          mv.Quantity,
		UnitPrice:         mv.UnitPrice,
		TotalPrice:        mv.TotalPrice,
		SupplierID:        mv.SupplierID,
		DocumentReference: mv.DocumentReference,
		Reason:            mv.Reason,
		Author:            mv.Author,
		Validator:         mv.Validator,
		RecordedBy:        mv.RecordedBy,
		StockBefore:       mv.StockBefore,
		StockAfter:        mv.StockAfter,
		PMPBefore:         mv.PMPBefore,
		PMPAfter:          mv.PMPAfter,
		Date:              mv.Date,
		CreatedAt:         mv.CreatedAt,
	}
}
