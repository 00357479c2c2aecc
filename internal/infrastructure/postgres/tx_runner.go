package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var (
	_ ports.TxRunner      = (*TxRunner)(nil)
	_ ports.UsageTxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los productos y corridas se leen con FOR UPDATE, así que dos operaciones sobre el mismo
// producto se serializan. Fallas de begin/commit, serialización o deadlock devuelven
// domain.ErrTransactionAborted para que el cliente reintente.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	runRepo repository.ProductionRunRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, NewProductRepository(tx), NewProductionRunRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunUsage como Run, con el repositorio de uso diario atado a la misma tx.
func (r *TxRunner) RunUsage(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	usageRepo repository.UsageRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, NewProductRepository(tx), NewStockMovementRepository(tx), NewUsageRepository(tx))
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return aborted("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return aborted("commit transaction", err)
	}
	return nil
}
