package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType es el tipo de movimiento de stock (conjunto cerrado).
type MovementType string

const (
	MovementPurchase       MovementType = "purchase"        // entrada por compra
	MovementConsumption    MovementType = "consumption"     // salida a producción
	MovementLoss           MovementType = "loss"            // merma, caducidad, rotura
	MovementCorrection     MovementType = "correction"      // ajuste de inventario (con signo)
	MovementSupplierReturn MovementType = "supplier_return" // devolución al proveedor
)

// MovementTypes lista los tipos admitidos.
var MovementTypes = []MovementType{
	MovementPurchase, MovementConsumption, MovementLoss, MovementCorrection, MovementSupplierReturn,
}

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	for _, v := range MovementTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsOutflow: consumo, merma y devolución reducen stock sin tocar el PMP.
func (t MovementType) IsOutflow() bool {
	return t == MovementConsumption || t == MovementLoss || t == MovementSupplierReturn
}

// RequiresValidator: todo lo que no es compra necesita contrafirma.
func (t MovementType) RequiresValidator() bool {
	return t != MovementPurchase
}

// CountsAsConsumed: tipos que entran en el valor consumido del periodo.
func (t MovementType) CountsAsConsumed() bool {
	return t == MovementConsumption || t == MovementLoss
}

// StockMovement es una línea inmutable del libro de stock.
// Quantity guarda el efecto con signo sobre el stock (positivo entrada, negativo salida).
// StockBefore/After y PMPBefore/After son la auditoría del cálculo en el momento de registrar.
type StockMovement struct {
	ID                string
	MaterialID        string
	MaterialName      string
	Type              MovementType
	Quantity          decimal.Decimal
	UnitPrice         *decimal.Decimal
	TotalPrice        *decimal.Decimal
	SupplierID        string
	DocumentReference string
	Reason            string
	Author            string
	Validator         string
	RecordedBy        string // usuario autenticado que registró
	StockBefore       decimal.Decimal
	StockAfter        decimal.Decimal
	PMPBefore         decimal.Decimal
	PMPAfter          decimal.Decimal
	Date              time.Time // fecha de negocio del movimiento
	CreatedAt         time.Time
}
