package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/query"
	"github.com/jhoicas/almacen-api/internal/application/workflow"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/csvimport"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IngredientUC     *inventory.IngredientUseCase
	Ledger           *inventory.LedgerUseCase
	Batch            *inventory.BatchProcessor
	CSVReader        *csvimport.Reader
	Engine           *workflow.Engine
	Projection       *query.ProjectionUseCase
	Reports          *inventory.ReportUseCase
	ExpiringSoonDays int
	JWTSecret        string
}

// Router registra las rutas de la API. Todas requieren Bearer Token con un rol conocido;
// las reglas finas de cada transición las aplica el motor de solicitudes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole())

	stockRoles := RequireRole(entity.RoleFulfiller, entity.RoleAdministrator)
	adminOnly := RequireRole(entity.RoleAdministrator)

	// Insumos. Las vistas con nombre van antes de /:id.
	ingredients := protected.Group("/ingredients")
	ingredientHandler := NewIngredientHandler(deps.IngredientUC, deps.Projection, deps.ExpiringSoonDays)
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Post("/", stockRoles, ingredientHandler.Create)
	ingredients.Get("/expiring_soon", ingredientHandler.ExpiringSoon)
	ingredients.Get("/expired", ingredientHandler.Expired)
	ingredients.Get("/low_stock", ingredientHandler.LowStock)
	ingredients.Get("/:id", ingredientHandler.GetByID)
	ingredients.Patch("/:id", stockRoles, ingredientHandler.Update)
	ingredients.Delete("/:id", adminOnly, ingredientHandler.Delete)
	ingredients.Put("/:id/mark_checked", stockRoles, ingredientHandler.MarkChecked)

	// Libro de inventario
	operations := protected.Group("/inventory-operations")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Batch, deps.CSVReader)
	operations.Get("/", inventoryHandler.List)
	operations.Post("/", stockRoles, inventoryHandler.Post)
	operations.Post("/batch_operation", stockRoles, inventoryHandler.BatchOperation)
	operations.Post("/import_csv", stockRoles, inventoryHandler.ImportCSV)
	operations.Get("/:id", inventoryHandler.GetByID)

	// Solicitudes de material
	requests := protected.Group("/material-requests")
	requestHandler := NewMaterialRequestHandler(deps.Engine, deps.Projection)
	requests.Get("/", requestHandler.List)
	requests.Post("/", requestHandler.Create)
	requests.Get("/assigned_to_me", requestHandler.AssignedToMe)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Patch("/:id", requestHandler.Update)
	requests.Delete("/:id", requestHandler.Delete)
	requests.Put("/:id/approve", requestHandler.Approve)
	requests.Put("/:id/reject", requestHandler.Reject)
	requests.Put("/:id/assign", requestHandler.Assign)
	requests.Put("/:id/start_processing", requestHandler.StartProcessing)
	requests.Put("/:id/complete", requestHandler.Complete)

	// Reportes
	reports := protected.Group("/inventory-reports")
	reportHandler := NewReportHandler(deps.Reports)
	reports.Get("/generate_report", reportHandler.GenerateReport)
}
