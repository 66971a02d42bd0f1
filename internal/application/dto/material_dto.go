package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest entrada para dar de alta una materia prima.
// El stock y el PMP iniciales los declara el operador; el valor se calcula.
type CreateMaterialRequest struct {
	Name                string          `json:"name" validate:"required,min=1,max=200"`
	Category            string          `json:"category" validate:"max=100"`
	Unit                string          `json:"unit" validate:"required,unit"`
	InitialStock        decimal.Decimal `json:"initial_stock"`
	InitialCost         decimal.Decimal `json:"initial_cost"`
	AlertThreshold      decimal.Decimal `json:"alert_threshold"`
	PreferredSupplierID string          `json:"preferred_supplier_id"`
}

// UpdateMaterialRequest solo metadatos: stock y costo cambian por movimientos.
type UpdateMaterialRequest struct {
	Name                *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Category            *string          `json:"category" validate:"omitempty,max=100"`
	Unit                *string          `json:"unit" validate:"omitempty,unit"`
	AlertThreshold      *decimal.Decimal `json:"alert_threshold"`
	PreferredSupplierID *string          `json:"preferred_supplier_id"`
	Active              *bool            `json:"active"`
}

// ConvertUnitRequest body para POST /api/materials/:id/convert-unit.
type ConvertUnitRequest struct {
	Factor  decimal.Decimal `json:"factor" validate:"gt=0"`
	NewUnit string          `json:"new_unit" validate:"required,unit"`
}

// MaterialResponse salida de una materia prima.
type MaterialResponse struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Category            string          `json:"category,omitempty"`
	Unit                string          `json:"unit"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
	TotalValue          decimal.Decimal `json:"total_value"`
	AlertThreshold      decimal.Decimal `json:"alert_threshold"`
	BelowThreshold      bool            `json:"below_threshold"`
	PreferredSupplierID string          `json:"preferred_supplier_id,omitempty"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// MaterialListResponse lista paginada de materias primas.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
