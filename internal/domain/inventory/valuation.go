package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
)

// Valuation es el estado valorizado de una materia prima.
type Valuation struct {
	Stock decimal.Decimal
	PMP   decimal.Decimal
	Value decimal.Decimal
}

// ValuationOf toma el estado actual de la materia prima.
func ValuationOf(m *entity.RawMaterial) Valuation {
	return Valuation{Stock: m.CurrentStock, PMP: m.WeightedAverageCost, Value: m.TotalValue}
}

// Result es el efecto de un movimiento: estado nuevo, delta con signo y valor atribuido a la línea.
type Result struct {
	Before     Valuation
	After      Valuation
	Delta      decimal.Decimal
	TotalPrice decimal.Decimal
}

// SignedDelta aplica la convención de signo del libro.
// Compra y salidas reciben magnitud no negativa; la corrección recibe la cantidad con signo.
func SignedDelta(t entity.MovementType, quantity decimal.Decimal) (decimal.Decimal, error) {
	if !t.Valid() {
		return decimal.Zero, fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, t)
	}
	if quantity.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: la cantidad no puede ser cero", domain.ErrInvalidInput)
	}
	switch {
	case t == entity.MovementCorrection:
		return quantity, nil
	case quantity.IsNegative():
		return decimal.Zero, fmt.Errorf("%w: la cantidad debe ser positiva para %s", domain.ErrInvalidInput, t)
	case t.IsOutflow():
		return quantity.Neg(), nil
	default:
		return quantity, nil
	}
}

// ApplyMovement calcula el nuevo estado de una materia prima para un movimiento.
// price es el precio total de la compra (obligatorio en compras); en salidas, si viene,
// se guarda tal cual en la línea, y si no se valoriza a cantidad * PMP.
func ApplyMovement(before Valuation, t entity.MovementType, quantity decimal.Decimal, price *decimal.Decimal) (Result, error) {
	delta, err := SignedDelta(t, quantity)
	if err != nil {
		return Result{}, err
	}
	res := Result{Before: before, Delta: delta}
	stockAfter := before.Stock.Add(delta)

	if t == entity.MovementPurchase {
		if price == nil {
			return Result{}, fmt.Errorf("%w: el precio total es obligatorio en una compra", domain.ErrInvalidInput)
		}
		if price.IsNegative() {
			return Result{}, fmt.Errorf("%w: el precio total no puede ser negativo", domain.ErrInvalidInput)
		}
		res.After = Valuation{
			Stock: stockAfter,
			PMP:   CostCalculator(before.Value, stockAfter, *price, before.PMP),
			Value: before.Value.Add(*price),
		}
		res.TotalPrice = *price
		return res, nil
	}

	// salidas y correcciones: el PMP no cambia y el valor se recalcula
	res.After = Valuation{
		Stock: stockAfter,
		PMP:   before.PMP,
		Value: stockAfter.Mul(before.PMP),
	}
	// el precio de una salida no lo decide el operador: siempre |q| * PMP
	res.TotalPrice = quantity.Abs().Mul(before.PMP)
	return res, nil
}
