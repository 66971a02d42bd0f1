package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movements.
// Quantity es una magnitud positiva salvo en "correction", donde lleva signo.
// TotalPrice es obligatorio en "purchase"; en salidas, si falta, se valoriza al PMP.
type RegisterMovementRequest struct {
	MaterialID        string           `json:"material_id" validate:"required"`
	Type              string           `json:"type" validate:"required,oneof=purchase consumption loss correction supplier_return"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice        *decimal.Decimal `json:"total_price,omitempty"`
	Date              *time.Time       `json:"date,omitempty"`
	Reason            string           `json:"reason" validate:"max=500"`
	DocumentReference string           `json:"document_reference" validate:"max=100"`
	SupplierID        string           `json:"supplier_id"`
	Author            string           `json:"author" validate:"max=100"`
	Validator         string           `json:"validator" validate:"max=100"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID                string           `json:"id"`
	MaterialID        string           `json:"material_id"`
	MaterialName      string           `json:"material_name,omitempty"`
	Type              string           `json:"type"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice        *decimal.Decimal `json:"total_price,omitempty"`
	SupplierID        string           `json:"supplier_id,omitempty"`
	DocumentReference string           `json:"document_reference,omitempty"`
	Reason            string           `json:"reason,omitempty"`
	Author            string           `json:"author,omitempty"`
	Validator         string           `json:"validator,omitempty"`
	RecordedBy        string           `json:"recorded_by,omitempty"`
	StockBefore       decimal.Decimal  `json:"stock_before"`
	StockAfter        decimal.Decimal  `json:"stock_after"`
	PMPBefore         decimal.Decimal  `json:"pmp_before"`
	PMPAfter          decimal.Decimal  `json:"pmp_after"`
	Date              time.Time        `json:"date"`
	CreatedAt         time.Time        `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LowStockItemDTO materia prima en o por debajo de su umbral de alerta.
type LowStockItemDTO struct {
	MaterialID          string          `json:"material_id"`
	Name                string          `json:"name"`
	Unit                string          `json:"unit"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	AlertThreshold      decimal.Decimal `json:"alert_threshold"`
	TargetStock         decimal.Decimal `json:"target_stock"`         // umbral * factor
	SuggestedOrderQty   decimal.Decimal `json:"suggested_order_qty"`  // objetivo - stock
	WeightedAverageCost decimal.Decimal `json:"weighted_average_cost"`
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"` // cantidad * PMP
	PreferredSupplierID string          `json:"preferred_supplier_id,omitempty"`
	Priority            int             `json:"priority"` // 1 = más urgente
}
