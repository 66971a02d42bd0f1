package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/boulangerie-api/internal/application/analytics"
	"github.com/jhoicas/boulangerie-api/internal/application/dto"
	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/domain"
)

// AnalyticsHandler agregaciones de costos y lista de reposición (protegido).
type AnalyticsHandler struct {
	reports  *analytics.ReportUseCase
	lowStock *inventory.LowStockUseCase
	now      func() time.Time
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(reports *analytics.ReportUseCase, lowStock *inventory.LowStockUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{reports: reports, lowStock: lowStock, now: time.Now}
}

func (h *AnalyticsHandler) period(c *fiber.Ctx) (dto.PeriodRequest, time.Time, time.Time, error) {
	var req dto.PeriodRequest
	if err := c.QueryParser(&req); err != nil {
		return req, time.Time{}, time.Time{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	from, to, err := analytics.ParsePeriod(req.From, req.To, h.now())
	return req, from, to, err
}

// PurchaseCost godoc
// @Summary      Coste de compras del periodo
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from         query  string  false  "YYYY-MM-DD o RFC3339 (defecto: inicio de mes)"
// @Param        to           query  string  false  "YYYY-MM-DD o RFC3339 (defecto: ahora)"
// @Param        material_id  query  string  false  "vacío = todas"
// @Success      200  {object}  dto.PurchaseCostDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/purchase-cost [get]
func (h *AnalyticsHandler) PurchaseCost(c *fiber.Ctx) error {
	req, from, to, err := h.period(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.reports.TotalPurchaseCost(c.Context(), req.MaterialID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConsumedValue godoc
// @Summary      Valor consumido del periodo (consumos + mermas)
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        to    query  string  false  "YYYY-MM-DD o RFC3339"
// @Success      200  {object}  dto.ConsumedValueDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/consumed-value [get]
func (h *AnalyticsHandler) ConsumedValue(c *fiber.Ctx) error {
	_, from, to, err := h.period(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.reports.ConsumedValue(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Margin godoc
// @Summary      Margen bruto del periodo
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        to    query  string  false  "YYYY-MM-DD o RFC3339"
// @Success      200  {object}  dto.GrossMarginDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/margin [get]
func (h *AnalyticsHandler) Margin(c *fiber.Ctx) error {
	_, from, to, err := h.period(c)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.reports.GrossMargin(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Refresh godoc
// @Summary      Recargar el snapshot de analítica
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SnapshotInfoDTO
// @Router       /api/analytics/refresh [post]
func (h *AnalyticsHandler) Refresh(c *fiber.Ctx) error {
	out, err := h.reports.Refresh(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Lista de reposición
// @Description  Materias primas activas en o por debajo del umbral, ordenadas por urgencia.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/low-stock [get]
func (h *AnalyticsHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.lowStock.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"items": list,
	})
}
