package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/boulangerie-api/internal/application/dto"
	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/application/usecase"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
)

// MovementHandler registro y consulta del libro de movimientos (protegido).
type MovementHandler struct {
	ledger *inventory.LedgerUseCase
	uc     *usecase.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *inventory.LedgerUseCase, uc *usecase.MovementUseCase) *MovementHandler {
	return &MovementHandler{ledger: ledger, uc: uc}
}

// Record godoc
// @Summary      Registrar movimiento de stock
// @Description  Actualiza stock, PMP y valor de la materia prima en la misma transacción.
// @Description  409 con retryable=true si la transacción agotó los reintentos por concurrencia.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterMovementRequest  true  "material_id, type, quantity, total_price (compras), validator (salidas)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	var date time.Time
	if in.Date != nil {
		date = *in.Date
	}
	mv, err := h.ledger.RecordMovement(c.Context(), inventory.MovementInputDTO{
		MaterialID:        in.MaterialID,
		Type:              entity.MovementType(in.Type),
		Quantity:          in.Quantity,
		UnitPrice:         in.UnitPrice,
		TotalPrice:        in.TotalPrice,
		Date:              date,
		Reason:            in.Reason,
		DocumentReference: in.DocumentReference,
		SupplierID:        in.SupplierID,
		Author:            in.Author,
		Validator:         in.Validator,
		RecordedBy:        recorder(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(usecase.ToMovementResponse(mv))
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  string  false  "filtrar por materia prima"
// @Param        limit        query  int     false  "máx. 500"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit debe estar entre 0 y 500"})
	}
	out, err := h.uc.List(c.Context(), c.Query("material_id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
