package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/boulangerie-api/internal/application/analytics"
	"github.com/jhoicas/boulangerie-api/internal/application/inventory"
	"github.com/jhoicas/boulangerie-api/internal/application/usecase"
	"github.com/jhoicas/boulangerie-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	MaterialUC *usecase.MaterialUseCase
	SupplierUC *usecase.SupplierUseCase
	MovementUC *usecase.MovementUseCase
	Ledger     *inventory.LedgerUseCase
	LowStock   *inventory.LowStockUseCase
	Reports    *analytics.ReportUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
//
// Roles:
//   - lectura: admin, panadero, vendedor
//   - movimientos: admin, panadero
//   - altas, bajas, conversión de unidad, proveedores y analítica: admin
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RolePanadero, jwt.RoleVendedor)
	bakery := RequireRole(jwt.RoleAdmin, jwt.RolePanadero)
	admin := RequireRole(jwt.RoleAdmin)

	// Materias primas
	materials := api.Group("/materials")
	materialHandler := NewMaterialHandler(deps.MaterialUC, deps.Ledger)
	materials.Get("/", anyRole, materialHandler.List)
	materials.Get("/:id", anyRole, materialHandler.GetByID)
	materials.Post("/", admin, materialHandler.Create)
	materials.Put("/:id", admin, materialHandler.Update)
	materials.Delete("/:id", admin, materialHandler.Delete)
	materials.Post("/:id/convert-unit", admin, materialHandler.ConvertUnit)

	// Libro de movimientos
	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.Ledger, deps.MovementUC)
	movements.Get("/", anyRole, movementHandler.List)
	movements.Get("/:id", anyRole, movementHandler.GetByID)
	movements.Post("/", bakery, movementHandler.Record)

	// Proveedores
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", anyRole, supplierHandler.List)
	suppliers.Get("/:id", anyRole, supplierHandler.GetByID)
	suppliers.Post("/", admin, supplierHandler.Create)
	suppliers.Put("/:id", admin, supplierHandler.Update)
	suppliers.Delete("/:id", admin, supplierHandler.Delete)

	// Analítica e inventario
	analyticsHandler := NewAnalyticsHandler(deps.Reports, deps.LowStock)
	reports := api.Group("/analytics", admin)
	reports.Get("/purchase-cost", analyticsHandler.PurchaseCost)
	reports.Get("/consumed-value", analyticsHandler.ConsumedValue)
	reports.Get("/margin", analyticsHandler.Margin)
	reports.Post("/refresh", analyticsHandler.Refresh)

	api.Get("/inventory/low-stock", anyRole, analyticsHandler.LowStock)
}
