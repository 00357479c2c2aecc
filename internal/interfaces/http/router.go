package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cocina-api/internal/application/analytics"
	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/jhoicas/Cocina-api/internal/application/production"
	"github.com/jhoicas/Cocina-api/internal/application/usecase"
	"github.com/jhoicas/Cocina-api/pkg/jwt"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	RecipeUC    *usecase.RecipeUseCase
	LotUC       *inventory.LotUseCase
	AlertsUC    *inventory.AlertsUseCase
	LedgerUC    *inventory.LedgerUseCase
	UsageUC     *inventory.UsageUseCase
	RunUC       *production.UseCase
	SheetUC     *production.SheetUseCase
	DashboardUC *analytics.DashboardUseCase
	JWTSecret   string
	StoreDriver string
	Log         zerolog.Logger
}

// Router registra las rutas de la API.
// Lectura de catálogo: cualquier rol. Altas de lotes: admin y proveedor.
// Corridas, uso diario, libro y tablero: admin y cocinero. Catálogo (escritura): solo admin.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health(deps.StoreDriver))

	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleCocinero, jwt.RoleProveedor)
	adminOnly := RequireRole(jwt.RoleAdmin)
	kitchen := RequireRole(jwt.RoleAdmin, jwt.RoleCocinero)
	receiving := RequireRole(jwt.RoleAdmin, jwt.RoleProveedor)

	// Products
	productHandler := NewProductHandler(deps.ProductUC, deps.LotUC, deps.AlertsUC, deps.Log)
	products := protected.Group("/products")
	products.Get("/", anyRole, productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/alerts", anyRole, productHandler.Alerts)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/lots", anyRole, productHandler.Lots)

	// Lots
	lotHandler := NewLotHandler(deps.LotUC, deps.Log)
	lots := protected.Group("/lots")
	lots.Post("/", receiving, lotHandler.Add)
	lots.Put("/:id", adminOnly, lotHandler.Correct)
	lots.Delete("/:id", adminOnly, lotHandler.Deactivate)

	// Recipes
	recipeHandler := NewRecipeHandler(deps.RecipeUC, deps.Log)
	recipes := protected.Group("/recipes")
	recipes.Get("/", anyRole, recipeHandler.List)
	recipes.Post("/", adminOnly, recipeHandler.Create)
	recipes.Get("/:id", anyRole, recipeHandler.GetByID)
	recipes.Put("/:id", adminOnly, recipeHandler.Update)
	recipes.Delete("/:id", adminOnly, recipeHandler.Delete)

	// Production runs
	runHandler := NewProductionHandler(deps.RunUC, deps.SheetUC, deps.Log)
	runs := protected.Group("/production-runs", kitchen)
	runs.Get("/", runHandler.List)
	runs.Post("/plan", runHandler.Plan)
	runs.Post("/start", runHandler.Start)
	runs.Get("/export", runHandler.Export)
	runs.Get("/:id", runHandler.Get)
	runs.Post("/:id/consume", runHandler.Consume)
	runs.Post("/:id/confirm", runHandler.Confirm)
	runs.Post("/:id/cancel", runHandler.Cancel)
	runs.Get("/:id/sheet", runHandler.Sheet)

	// Usage log
	usageHandler := NewUsageHandler(deps.UsageUC, deps.Log)
	usage := protected.Group("/usage-log", kitchen)
	usage.Get("/", usageHandler.List)
	usage.Post("/", usageHandler.Record)
	usage.Get("/daily", usageHandler.Daily)

	// Ledger
	ledgerHandler := NewLedgerHandler(deps.LedgerUC, deps.Log)
	protected.Get("/stock-movements", kitchen, ledgerHandler.List)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.Log)
	protected.Get("/dashboard/production", kitchen, dashboardHandler.GetProduction)
}
