package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
	"github.com/jhoicas/boulangerie-api/internal/domain/inventory"
	"github.com/jhoicas/boulangerie-api/internal/domain/repository"
	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

// LedgerUseCase registra movimientos de stock y conversiones de unidad.
// Cada operación lee la materia prima, calcula el nuevo estado y escribe materia prima
// y movimiento en una sola transacción; nada parcial queda confirmado.
type LedgerUseCase struct {
	txRunner     TxRunner
	invalidators []Invalidator
	log          *logger.Logger
	now          func() time.Time
}

// NewLedgerUseCase construye el caso de uso. Los invalidators se avisan tras cada cambio confirmado.
func NewLedgerUseCase(txRunner TxRunner, log *logger.Logger, invalidators ...Invalidator) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:     txRunner,
		invalidators: invalidators,
		log:          logger.OrNop(log).Named("ledger"),
		now:          time.Now,
	}
}

// MovementInputDTO entrada para registrar un movimiento.
// Quantity: magnitud no negativa, salvo en correction donde el signo indica el sentido.
// TotalPrice obligatorio en compras (o UnitPrice, y se multiplica por la cantidad).
type MovementInputDTO struct {
	MaterialID        string
	Type              entity.MovementType
	Quantity          decimal.Decimal
	UnitPrice         *decimal.Decimal
	TotalPrice        *decimal.Decimal
	Date              time.Time // cero = ahora
	Reason            string
	DocumentReference string
	SupplierID        string
	Author            string
	Validator         string
	RecordedBy        string
}

// ConvertUnitInput entrada para cambiar la unidad de una materia prima.
type ConvertUnitInput struct {
	MaterialID string
	Factor     decimal.Decimal
	NewUnit    entity.Unit
}

// validateMovement aplica las reglas que no necesitan leer el almacén.
// Devuelve el precio total de una compra; nil en el resto de tipos.
func validateMovement(in *MovementInputDTO) (*decimal.Decimal, error) {
	if strings.TrimSpace(in.MaterialID) == "" {
		return nil, fmt.Errorf("%w: material_id es obligatorio", domain.ErrInvalidInput)
	}
	if _, err := inventory.SignedDelta(in.Type, in.Quantity); err != nil {
		return nil, err
	}
	if in.Type.RequiresValidator() && strings.TrimSpace(in.Validator) == "" {
		return nil, fmt.Errorf("%w: un movimiento %s requiere validador", domain.ErrInvalidInput, in.Type)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: el precio unitario no puede ser negativo", domain.ErrInvalidInput)
	}
	if in.TotalPrice != nil && in.TotalPrice.IsNegative() {
		return nil, fmt.Errorf("%w: el precio total no puede ser negativo", domain.ErrInvalidInput)
	}

	// fuera de las compras el precio se recalcula al PMP
	if in.Type != entity.MovementPurchase {
		in.UnitPrice, in.TotalPrice = nil, nil
		return nil, nil
	}
	price := in.TotalPrice
	if price == nil && in.UnitPrice != nil {
		total := in.UnitPrice.Mul(in.Quantity.Abs())
		price = &total
	}
	if price == nil {
		return nil, fmt.Errorf("%w: una compra requiere precio total", domain.ErrInvalidInput)
	}
	return price, nil
}

// RecordMovement registra un movimiento y actualiza stock, PMP y valor de la materia prima.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, input MovementInputDTO) (*entity.StockMovement, error) {
	price, err := validateMovement(&input)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	var mv *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		materials repository.RawMaterialTxRepository,
		movements repository.StockMovementTxRepository,
	) error {
		material, err := materials.GetForUpdate(ctx, input.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: materia prima %s", domain.ErrNotFound, input.MaterialID)
		}

		res, err := inventory.ApplyMovement(inventory.ValuationOf(material), input.Type, input.Quantity, price)
		if err != nil {
			return err
		}

		material.CurrentStock = res.After.Stock
		material.WeightedAverageCost = res.After.PMP
		material.TotalValue = res.After.Value
		material.UpdatedAt = now
		if err := materials.SaveValuation(ctx, material); err != nil {
			return err
		}

		totalPrice := res.TotalPrice
		mv = &entity.StockMovement{
			MaterialID:        material.ID,
			MaterialName:      material.Name,
			Type:              input.Type,
			Quantity:          res.Delta,
			UnitPrice:         unitPriceFor(input, res),
			TotalPrice:        &totalPrice,
			SupplierID:        input.SupplierID,
			DocumentReference: input.DocumentReference,
			Reason:            input.Reason,
			Author:            input.Author,
			Validator:         input.Validator,
			RecordedBy:        input.RecordedBy,
			StockBefore:       res.Before.Stock,
			StockAfter:        res.After.Stock,
			PMPBefore:         res.Before.PMP,
			PMPAfter:          res.After.PMP,
			Date:              date,
			CreatedAt:         now,
		}
		return movements.Create(ctx, mv)
	})
	if err != nil {
		uc.logFailure(err, "movimiento rechazado", input.MaterialID)
		return nil, err
	}

	uc.log.Info().
		Str("material_id", mv.MaterialID).
		Str("movement_id", mv.ID).
		Str("type", string(mv.Type)).
		Str("quantity", mv.Quantity.String()).
		Str("stock", mv.StockBefore.String()+" -> "+mv.StockAfter.String()).
		Str("pmp", mv.PMPBefore.StringFixed(4)+" -> "+mv.PMPAfter.StringFixed(4)).
		Msg("movimiento registrado")
	uc.invalidate(ctx)
	return mv, nil
}

// unitPriceFor: en compras el informado o total / cantidad; en el resto, el PMP vigente.
func unitPriceFor(in MovementInputDTO, res inventory.Result) *decimal.Decimal {
	if in.Type == entity.MovementPurchase {
		if in.UnitPrice != nil {
			p := *in.UnitPrice
			return &p
		}
		p := res.TotalPrice.DivRound(in.Quantity, 6)
		return &p
	}
	p := res.Before.PMP
	return &p
}

// ConvertUnit reexpresa stock, PMP y umbral en otra unidad conservando el valor.
// No genera movimiento en el libro, pero corre bajo la misma transacción.
func (uc *LedgerUseCase) ConvertUnit(ctx context.Context, input ConvertUnitInput) (*entity.RawMaterial, error) {
	if strings.TrimSpace(input.MaterialID) == "" {
		return nil, fmt.Errorf("%w: material_id es obligatorio", domain.ErrInvalidInput)
	}
	if !input.Factor.IsPositive() {
		return nil, fmt.Errorf("%w: el factor de conversión debe ser positivo", domain.ErrInvalidInput)
	}
	if !input.NewUnit.Valid() {
		return nil, fmt.Errorf("%w: unidad desconocida %q", domain.ErrInvalidInput, input.NewUnit)
	}
	now := uc.now()

	var (
		updated  *entity.RawMaterial
		fromUnit entity.Unit
	)
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		materials repository.RawMaterialTxRepository,
		_ repository.StockMovementTxRepository,
	) error {
		material, err := materials.GetForUpdate(ctx, input.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return fmt.Errorf("%w: materia prima %s", domain.ErrNotFound, input.MaterialID)
		}
		if material.Unit == input.NewUnit {
			return fmt.Errorf("%w: la materia prima ya está en %s", domain.ErrInvalidInput, input.NewUnit)
		}

		conv, err := inventory.ConvertUnit(inventory.ValuationOf(material), material.AlertThreshold, input.Factor)
		if err != nil {
			return err
		}
		fromUnit = material.Unit
		material.Unit = input.NewUnit
		material.CurrentStock = conv.Stock
		material.WeightedAverageCost = conv.PMP
		material.AlertThreshold = conv.Threshold
		material.TotalValue = conv.Value
		material.UpdatedAt = now
		if err := materials.SaveValuation(ctx, material); err != nil {
			return err
		}
		updated = material
		return nil
	})
	if err != nil {
		uc.logFailure(err, "conversión rechazada", input.MaterialID)
		return nil, err
	}

	uc.log.Info().
		Str("material_id", updated.ID).
		Str("unit", string(fromUnit)+" -> "+string(updated.Unit)).
		Str("factor", input.Factor.String()).
		Msg("conversión de unidad aplicada")
	uc.invalidate(ctx)
	return updated, nil
}

func (uc *LedgerUseCase) logFailure(err error, msg, materialID string) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		uc.log.Warn().Err(err).Str("material_id", materialID).Msg(msg + ": conflicto de concurrencia")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound):
		uc.log.Debug().Err(err).Str("material_id", materialID).Msg(msg)
	default:
		uc.log.Error().Err(err).Str("material_id", materialID).Msg(msg)
	}
}

// invalidate avisa a snapshot y cachés; un fallo aquí no deshace el movimiento ya confirmado.
func (uc *LedgerUseCase) invalidate(ctx context.Context) {
	for _, inv := range uc.invalidators {
		if err := inv.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("no se pudo invalidar caché")
		}
	}
}
