package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var (
	_ ports.TxRunner      = (*Store)(nil)
	_ ports.UsageTxRunner = (*Store)(nil)
)

// writeConflictCode código de MongoDB para WriteConflict.
const writeConflictCode = 112

// Run ejecuta fn en una transacción multi-documento. No reintenta: un conflicto de escritura
// o una etiqueta TransientTransactionError se devuelven como domain.ErrTransactionAborted.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	runRepo repository.ProductionRunRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.inTx(ctx, func(sc mongo.SessionContext) error {
		return fn(sc, s.Products(), s.Runs(), s.Movements())
	})
}

// RunUsage como Run, con el registro de uso diario en la misma transacción.
func (s *Store) RunUsage(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	usageRepo repository.UsageRepository,
) error) error {
	return s.inTx(ctx, func(sc mongo.SessionContext) error {
		return fn(sc, s.Products(), s.Movements(), s.Usage())
	})
}

func (s *Store) inTx(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", domain.ErrTransactionAborted, err)
	}
	defer sess.EndSession(context.Background())

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sess.StartTransaction(txOpts); err != nil {
			return fmt.Errorf("%w: start transaction: %v", domain.ErrTransactionAborted, err)
		}
		if err := fn(sc); err != nil {
			_ = sess.AbortTransaction(context.Background())
			if isTransient(err) {
				return fmt.Errorf("%w: %v", domain.ErrTransactionAborted, err)
			}
			return err
		}
		if err := sess.CommitTransaction(sc); err != nil {
			_ = sess.AbortTransaction(context.Background())
			return fmt.Errorf("%w: commit: %v", domain.ErrTransactionAborted, err)
		}
		return nil
	})
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorLabel("TransientTransactionError") || se.HasErrorCode(writeConflictCode)
	}
	return false
}
