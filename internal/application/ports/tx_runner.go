package ports

import (
	"context"
	"time"

	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda visible ningún cambio. Las fallas de begin/commit o los conflictos
// de escritura se devuelven envolviendo domain.ErrTransactionAborted; no hay reintento interno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		runRepo repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// UsageTxRunner igual que TxRunner, con los repositorios que necesita el registro de uso diario:
// descuento de lotes, movimiento USAGE y registro de uso se confirman juntos.
type UsageTxRunner interface {
	RunUsage(ctx context.Context, fn func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		usageRepo repository.UsageRepository,
	) error) error
}

// Clock fuente de la hora actual; los casos de uso la reciben para poder fijarla en pruebas.
type Clock func() time.Time
