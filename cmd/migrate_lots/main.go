// migrate_lots pasa el stock cargado antes de existir los lotes al modelo por lotes.
// Por cada producto cuya cantidad guardada supera la suma de sus lotes activos crea un lote
// LEGACY-AAAAMMDD por la diferencia; si la cantidad es menor la recalcula desde los lotes.
//
// Uso: go run ./cmd/migrate_lots [-csv hints.csv] [-charset latin1|utf8] [-dry-run]
//
// El CSV opcional (product_id,expires_at,invoice_ref) aporta vencimiento y remito del stock viejo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/storage"
	"github.com/jhoicas/Cocina-api/pkg/config"
	"github.com/jhoicas/Cocina-api/pkg/logger"
)

func main() {
	csvPath := flag.String("csv", "", "CSV con vencimiento y remito por producto")
	charset := flag.String("charset", "utf8", "codificación del CSV: utf8 o latin1")
	dryRun := flag.Bool("dry-run", false, "solo informar, sin escribir")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "migrate_lots", Store: cfg.Store.Driver})

	hints := map[string]inventory.LegacyLotHint{}
	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
			os.Exit(1)
		}
		hints, err = readHints(f, *charset)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacenamiento")
	}
	defer backend.Close()

	uc := inventory.NewReconcileUseCase(backend.Tx, backend.Products, log.Component("migrate_lots"))
	report, err := uc.Run(ctx, inventory.ReconcileOptions{DryRun: *dryRun, Hints: hints})
	if err != nil {
		log.Error().Err(err).Msg("conciliación interrumpida")
	}
	log.Info().
		Bool("dry_run", *dryRun).
		Int("checked", report.Checked).
		Int("lots_created", report.LotsCreated).
		Int("recomputed", report.Recomputed).
		Msg("conciliación terminada")
	if err != nil {
		os.Exit(1)
	}
}
