package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (PMP) tras una compra.
// NuevoPMP = (ValorAnterior + PrecioTotalCompra) / StockPosterior
// Si el stock posterior no es positivo se conserva el PMP anterior (evita dividir por cero).
func CostCalculator(valorAnterior, stockPosterior, precioCompra, pmpAnterior decimal.Decimal) decimal.Decimal {
	if stockPosterior.LessThanOrEqual(decimal.Zero) {
		return pmpAnterior
	}
	return valorAnterior.Add(precioCompra).Div(stockPosterior)
}
