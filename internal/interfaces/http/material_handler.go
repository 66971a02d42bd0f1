package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/boulangerie-api/internal/application/dto"
	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/application/usecase"
	"github.com/jhoicas/boulangerie-api/internal/domain/entity"
)

// MaterialHandler maneja las peticiones HTTP de materias primas (protegido).
type MaterialHandler struct {
	uc     *usecase.MaterialUseCase
	ledger *inventory.LedgerUseCase
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *usecase.MaterialUseCase, ledger *inventory.LedgerUseCase) *MaterialHandler {
	return &MaterialHandler{uc: uc, ledger: ledger}
}

// Create godoc
// @Summary      Dar de alta una materia prima
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateMaterialRequest  true  "name, unit, stock y costo iniciales"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/materials [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar materias primas
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx. 500"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.MaterialListResponse
// @Router       /api/materials [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit debe estar entre 0 y 500"})
	}
	out, err := h.uc.List(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener materia prima
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar metadatos de una materia prima
// @Description  Stock, PMP y valor no se modifican aquí.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "ID"
// @Param        body  body      dto.UpdateMaterialRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar materia prima
// @Description  Borrado físico; los movimientos del libro se conservan.
// @Tags         materials
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [delete]
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ConvertUnit godoc
// @Summary      Cambiar la unidad de una materia prima
// @Description  Multiplica stock y umbral por factor y divide el PMP; el valor se conserva.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID"
// @Param        body  body      dto.ConvertUnitRequest  true  "factor y nueva unidad"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/convert-unit [post]
func (h *MaterialHandler) ConvertUnit(c *fiber.Ctx) error {
	var in dto.ConvertUnitRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, err)
	}
	m, err := h.ledger.ConvertUnit(c.Context(), inventory.ConvertUnitInput{
		MaterialID: c.Params("id"),
		Factor:     in.Factor,
		NewUnit:    entity.Unit(in.NewUnit),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(usecase.ToMaterialResponse(m))
}
