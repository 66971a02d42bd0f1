package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/boulangerie-api/internal/domain"
)

// conversionTolerance es el error relativo admitido al comparar el valor antes y después.
var conversionTolerance = decimal.New(1, -6)

// Conversion es el estado de una materia prima reexpresado en otra unidad.
type Conversion struct {
	Stock     decimal.Decimal
	PMP       decimal.Decimal
	Threshold decimal.Decimal
	Value     decimal.Decimal
}

// ConvertUnit multiplica stock y umbral por factor y divide el PMP por factor.
// El valor económico (stock * PMP) debe conservarse.
func ConvertUnit(before Valuation, threshold, factor decimal.Decimal) (Conversion, error) {
	if !factor.IsPositive() {
		return Conversion{}, fmt.Errorf("%w: el factor de conversión debe ser positivo", domain.ErrInvalidInput)
	}
	after := Conversion{
		Stock:     before.Stock.Mul(factor),
		PMP:       before.PMP.DivRound(factor, 12),
		Threshold: threshold.Mul(factor),
	}
	after.Value = after.Stock.Mul(after.PMP)

	valueBefore := before.Stock.Mul(before.PMP)
	if !withinTolerance(valueBefore, after.Value) {
		return Conversion{}, fmt.Errorf("%w: la conversión no conserva el valor (%s != %s)",
			domain.ErrInvalidInput, after.Value.String(), valueBefore.String())
	}
	// se guarda el valor anterior para que TotalValue no arrastre el redondeo del PMP
	after.Value = valueBefore
	return after, nil
}

func withinTolerance(a, b decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	scale := decimal.Max(a.Abs(), b.Abs(), decimal.NewFromInt(1))
	return diff.LessThanOrEqual(scale.Mul(conversionTolerance))
}
