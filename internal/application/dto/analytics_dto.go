package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Query parameters ──────────────────────────────────────────────────────────

// PeriodRequest parámetros de periodo para los endpoints de analítica.
type PeriodRequest struct {
	From       string `query:"from"`        // YYYY-MM-DD o RFC3339; por defecto primer día del mes actual
	To         string `query:"to"`          // YYYY-MM-DD (día completo) o RFC3339; por defecto ahora
	MaterialID string `query:"material_id"` // solo purchase-cost; vacío = todas
}

// ── Coste de compras ──────────────────────────────────────────────────────────

// PurchaseCostDTO suma de precio total de las compras del periodo.
type PurchaseCostDTO struct {
	MaterialID string          `json:"material_id,omitempty"`
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// ── Valor consumido ───────────────────────────────────────────────────────────

// ConsumedLineDTO valorización de un consumo o merma.
// IsEstimated = el movimiento no tenía precio guardado y se valorizó al PMP actual.
type ConsumedLineDTO struct {
	MovementID   string          `json:"movement_id"`
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name,omitempty"`
	Type         string          `json:"type"`
	Date         time.Time       `json:"date"`
	Quantity     decimal.Decimal `json:"quantity"`
	Value        decimal.Decimal `json:"value"`
	IsEstimated  bool            `json:"is_estimated"`
}

// ConsumedValueDTO coste de la mercancía consumida en el periodo (consumos + mermas).
type ConsumedValueDTO struct {
	From           time.Time         `json:"from"`
	To             time.Time         `json:"to"`
	Total          decimal.Decimal   `json:"total"`
	EstimatedTotal decimal.Decimal   `json:"estimated_total"` // parte del total valorizada al PMP actual
	Lines          []ConsumedLineDTO `json:"lines"`
}

// ── Margen bruto ──────────────────────────────────────────────────────────────

// GrossMarginDTO margen bruto del periodo: ventas de boutique - valor consumido.
type GrossMarginDTO struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenue       decimal.Decimal `json:"revenue"`
	ConsumedValue decimal.Decimal `json:"consumed_value"`
	PurchaseCost  decimal.Decimal `json:"purchase_cost"`
	Margin        decimal.Decimal `json:"margin"`
	MarginPct     decimal.Decimal `json:"margin_pct"` // Margin / Revenue * 100; 0 sin ventas
	HasEstimates  bool            `json:"has_estimates"`
	SnapshotAt    time.Time       `json:"snapshot_at"`
}

// SnapshotInfoDTO respuesta de POST /api/analytics/refresh.
type SnapshotInfoDTO struct {
	LoadedAt  time.Time `json:"loaded_at"`
	Materials int       `json:"materials"`
	Movements int       `json:"movements"`
}
