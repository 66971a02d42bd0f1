package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit es la unidad de medida de una materia prima (conjunto cerrado).
type Unit string

const (
	UnitKg      Unit = "kg"
	UnitG       Unit = "g"
	UnitL       Unit = "l"
	UnitMl      Unit = "ml"
	UnitPiece   Unit = "piece"
	UnitSac50Kg Unit = "sac50kg" // saco de 50 kg
	UnitSac25Kg Unit = "sac25kg" // saco de 25 kg
)

// Units lista las unidades admitidas, en orden de presentación.
var Units = []Unit{UnitKg, UnitG, UnitL, UnitMl, UnitPiece, UnitSac50Kg, UnitSac25Kg}

// Valid indica si la unidad pertenece al conjunto cerrado.
func (u Unit) Valid() bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

// RawMaterial representa una materia prima del obrador (harina, mantequilla, levadura...).
// CurrentStock, WeightedAverageCost y TotalValue solo cambian a través del libro de movimientos
// o de una conversión de unidad; TotalValue = CurrentStock * WeightedAverageCost.
type RawMaterial struct {
	ID                  string
	Name                string
	Category            string
	Unit                Unit
	CurrentStock        decimal.Decimal // puede quedar negativo tras salidas
	WeightedAverageCost decimal.Decimal // PMP, nunca negativo
	TotalValue          decimal.Decimal
	AlertThreshold      decimal.Decimal
	PreferredSupplierID string
	Active              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// BelowThreshold indica si el stock está en o por debajo del umbral de alerta.
func (m *RawMaterial) BelowThreshold() bool {
	return m.CurrentStock.LessThanOrEqual(m.AlertThreshold)
}

// MaterialPatch cambios administrativos sobre una materia prima.
// Solo se aplican (y se escriben) los campos no nil; stock, PMP y valor no forman parte.
type MaterialPatch struct {
	Name                *string
	Category            *string
	Unit                *Unit
	AlertThreshold      *decimal.Decimal
	PreferredSupplierID *string
	Active              *bool
	UpdatedAt           time.Time
}

// Apply copia los campos informados sobre m.
func (p MaterialPatch) Apply(m *RawMaterial) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Unit != nil {
		m.Unit = *p.Unit
	}
	if p.AlertThreshold != nil {
		m.AlertThreshold = *p.AlertThreshold
	}
	if p.PreferredSupplierID != nil {
		m.PreferredSupplierID = *p.PreferredSupplierID
	}
	if p.Active != nil {
		m.Active = *p.Active
	}
	m.UpdatedAt = p.UpdatedAt
}
