package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Cocina-api/internal/domain/inventory"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ReconcileReport resultado de la conciliación de stock heredado.
type ReconcileReport struct {
	Checked     int
	LotsCreated int
	Recomputed  int
}

// LegacyLotHint datos del stock heredado para el lote que se crea (vencimiento y remito originales).
type LegacyLotHint struct {
	ExpiresAt  *time.Time
	InvoiceRef string
}

// ReconcileOptions opciones de Run. Hints se indexa por ID de producto.
type ReconcileOptions struct {
	DryRun bool
	Hints  map[string]LegacyLotHint
}

// ReconcileUseCase lleva productos cargados antes de existir los lotes al modelo por lotes:
// si la cantidad guardada supera la suma de lotes activos crea un lote LEGACY por la diferencia;
// si es menor, recalcula la cantidad desde los lotes.
type ReconcileUseCase struct {
	txRunner    ports.TxRunner
	productRepo repository.ProductRepository
	log         zerolog.Logger
	now         ports.Clock
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(txRunner ports.TxRunner, productRepo repository.ProductRepository, log zerolog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{txRunner: txRunner, productRepo: productRepo, log: log, now: time.Now}
}

// WithClock reemplaza la fuente de hora (pruebas).
func (uc *ReconcileUseCase) WithClock(c ports.Clock) *ReconcileUseCase {
	uc.now = c
	return uc
}

// Run concilia producto por producto, cada uno en su propia transacción. Con DryRun solo informa.
func (uc *ReconcileUseCase) Run(ctx context.Context, opts ReconcileOptions) (ReconcileReport, error) {
	var report ReconcileReport
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return report, err
	}
	for _, p := range products {
		report.Checked++
		lotsTotal := AvailableTotal(p)
		if p.Quantity.Equal(lotsTotal) {
			continue
		}
		if opts.DryRun {
			uc.log.Info().Str("product", p.Name).Str("stored", p.Quantity.String()).Str("lots", lotsTotal.String()).Msg("desfase detectado (dry-run)")
			if p.Quantity.GreaterThan(lotsTotal) {
				report.LotsCreated++
			} else {
				report.Recomputed++
			}
			continue
		}
		created, err := uc.reconcileOne(ctx, p.ID, opts.Hints[p.ID])
		if err != nil {
			return report, fmt.Errorf("conciliar %s: %w", p.Name, err)
		}
		if created {
			report.LotsCreated++
		} else {
			report.Recomputed++
		}
	}
	return report, nil
}

func (uc *ReconcileUseCase) reconcileOne(ctx context.Context, productID string, hint LegacyLotHint) (bool, error) {
	created := false
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		_ repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil || product == nil {
			return err
		}
		now := uc.now()
		diff := entity.RoundQty(product.Quantity.Sub(AvailableTotal(product)))
		var mov *entity.StockMovement
		if diff.IsPositive() {
			lot := entity.Lot{
				ID:                uuid.New().String(),
				ProductID:         product.ID,
				Code:              "LEGACY-" + now.Format("20060102"),
				InvoiceRef:        nonEmpty(hint.InvoiceRef, "MIGRACION"),
				QuantityReceived:  diff,
				QuantityRemaining: diff,
				ReceivedAt:        now,
				Active:            true,
				UpdatedAt:         now,
			}
			if hint.ExpiresAt != nil {
				exp := *hint.ExpiresAt
				lot.ExpiresAt = &exp
			}
			for n := 2; product.HasLotCode(lot.Code); n++ {
				lot.Code = fmt.Sprintf("LEGACY-%s-%d", now.Format("20060102"), n)
			}
			product.Lots = append(product.Lots, lot)
			mov = &entity.StockMovement{
				ID:        uuid.New().String(),
				Type:      entity.MovementTypeIngress,
				ProductID: product.ID,
				Delta:     diff,
				Unit:      product.Unit,
				Reference: entity.MovementReference{LotID: lot.ID},
				Note:      "conciliación de stock heredado",
				CreatedBy: "migrate_lots",
				Timestamp: now,
			}
			created = true
		}
		product.RecomputeQuantity()
		product.Touch(now)
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		uc.log.Info().Str("product", product.Name).Str("diff", diff.String()).Bool("lot_created", created).Msg("producto conciliado")
		if mov != nil {
			return movRepo.Create(ctx, mov)
		}
		return nil
	})
	return created, err
}

// AvailableTotal suma de remanentes de los lotes activos del producto.
func AvailableTotal(p *entity.Product) decimal.Decimal {
	return domaininv.AvailableQuantity(p.Lots)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
