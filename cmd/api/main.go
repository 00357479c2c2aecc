package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appanalytics "github.com/jhoicas/Cocina-api/internal/application/analytics"
	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/jhoicas/Cocina-api/internal/application/production"
	"github.com/jhoicas/Cocina-api/internal/application/usecase"
	domaininv "github.com/jhoicas/Cocina-api/internal/domain/inventory"
	infrapdf "github.com/jhoicas/Cocina-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Cocina-api/internal/interfaces/http"
	"github.com/jhoicas/Cocina-api/pkg/config"
	"github.com/jhoicas/Cocina-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
		Store: cfg.Store.Driver,
	})
	log.Info().Str("env", cfg.App.Env).Msg("iniciando aplicación")

	policy, err := domaininv.ParseUnitPolicy(cfg.App.UnitPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("UNIT_POLICY")
	}

	ctx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	backend, err := storage.Open(ctx, cfg)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacenamiento")
	}
	defer backend.Close()

	productUC := usecase.NewProductUseCase(backend.Products, backend.Recipes)
	recipeUC := usecase.NewRecipeUseCase(backend.Recipes, backend.Products)
	lotUC := inventory.NewLotUseCase(backend.Tx, backend.Products)
	ledgerUC := inventory.NewLedgerUseCase(backend.Movements)
	usageUC := inventory.NewUsageUseCase(backend.UsageTx, backend.Usage, policy, log.Component("usage"))
	alertsUC := inventory.NewAlertsUseCase(backend.Products, cfg.Alerts.WarningDays, cfg.Alerts.UrgentDays)
	runUC := production.NewUseCase(
		backend.Tx, backend.Recipes, backend.Products, backend.Runs,
		policy, log.Component("production"),
	)

	// PDF: planilla imprimible de la corrida
	sheetUC := production.NewSheetUseCase(backend.Runs, backend.Recipes, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))
	dashboardUC := appanalytics.NewDashboardUseCase(backend.Runs, alertsUC)

	var jobs *scheduler.Scheduler
	if cfg.Alerts.Enabled {
		jobs = scheduler.New(cfg.Alerts.Cron, alertsUC, log.Component("scheduler"))
		if err := jobs.Start(); err != nil {
			log.Fatal().Err(err).Msg("scheduler de alertas")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (generar con swag init -g cmd/api/main.go)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Cocina API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin especificación swagger, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		RecipeUC:    recipeUC,
		LotUC:       lotUC,
		AlertsUC:    alertsUC,
		LedgerUC:    ledgerUC,
		UsageUC:     usageUC,
		RunUC:       runUC,
		SheetUC:     sheetUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		StoreDriver: backend.Driver,
		Log:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if jobs != nil {
		jobs.Stop()
	}

	log.Info().Msg("aplicación detenida")
}
