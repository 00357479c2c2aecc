// Package storage arma el backend de persistencia elegido por STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cocina-api/pkg/config"
)

// Backend repositorios fuera de transacción más el TxRunner del mismo almacén.
type Backend struct {
	Driver    string
	Products  repository.ProductRepository
	Recipes   repository.RecipeRepository
	Runs      repository.ProductionRunRepository
	Movements repository.StockMovementRepository
	Usage     repository.UsageRepository
	Tx        ports.TxRunner
	UsageTx   ports.UsageTxRunner
	close     func()
}

// Close libera conexiones del backend.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open conecta con el driver configurado.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		tx := postgres.NewTxRunner(pool)
		return &Backend{
			Driver:    config.DriverPostgres,
			Products:  postgres.NewProductRepository(pool),
			Recipes:   postgres.NewRecipeRepository(pool),
			Runs:      postgres.NewProductionRunRepository(pool),
			Movements: postgres.NewStockMovementRepository(pool),
			Usage:     postgres.NewUsageRepository(pool),
			Tx:        tx,
			UsageTx:   tx,
			close:     pool.Close,
		}, nil
	case config.DriverMongo:
		s, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return &Backend{
			Driver:    config.DriverMongo,
			Products:  s.Products(),
			Recipes:   s.Recipes(),
			Runs:      s.Runs(),
			Movements: s.Movements(),
			Usage:     s.Usage(),
			Tx:        s,
			UsageTx:   s,
			close:     s.Close,
		}, nil
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Store.Driver)
	}
}

// NewMemory backend en memoria, sin persistencia entre reinicios.
func NewMemory() *Backend {
	s := memory.NewStore()
	return &Backend{
		Driver:    config.DriverMemory,
		Products:  s.Products(),
		Recipes:   s.Recipes(),
		Runs:      s.Runs(),
		Movements: s.Movements(),
		Usage:     s.Usage(),
		Tx:        s,
		UsageTx:   s,
		close:     s.Close,
	}
}
