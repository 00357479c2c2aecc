package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// LotUseCase ingreso, corrección y baja de lotes. Cada operación recalcula el total del
// producto desde sus lotes activos y deja un movimiento en el libro, en la misma transacción.
type LotUseCase struct {
	txRunner    ports.TxRunner
	productRepo repository.ProductRepository
	now         ports.Clock
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(txRunner ports.TxRunner, productRepo repository.ProductRepository) *LotUseCase {
	return &LotUseCase{txRunner: txRunner, productRepo: productRepo, now: time.Now}
}

// WithClock reemplaza la fuente de hora (pruebas).
func (uc *LotUseCase) WithClock(c ports.Clock) *LotUseCase {
	uc.now = c
	return uc
}

// AddLot ingresa stock como un lote nuevo y registra un movimiento INGRESS.
func (uc *LotUseCase) AddLot(ctx context.Context, userID string, in dto.AddLotRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.ProductID) == "" || !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: el lote requiere producto y cantidad positiva", domain.ErrInvalidInput)
	}
	qty := entity.RoundQty(in.Quantity)
	if !qty.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad menor a la precisión admitida", domain.ErrInvalidInput)
	}

	var result *entity.Product
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		_ repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		now := uc.now()
		lotID := uuid.New().String()
		code := strings.TrimSpace(in.Code)
		if code == "" {
			code = generatedLotCode(now, lotID)
		}
		if product.HasLotCode(code) {
			return fmt.Errorf("%w: el producto ya tiene un lote %s", domain.ErrDuplicate, code)
		}
		lot := entity.Lot{
			ID:                lotID,
			ProductID:         product.ID,
			Code:              code,
			InvoiceRef:        strings.TrimSpace(in.InvoiceRef),
			QuantityReceived:  qty,
			QuantityRemaining: qty,
			ReceivedAt:        now,
			Active:            true,
			UpdatedAt:         now,
		}
		if in.ExpiresAt != nil {
			exp := *in.ExpiresAt
			lot.ExpiresAt = &exp
		}
		product.Lots = append(product.Lots, lot)
		product.RecomputeQuantity()
		product.Touch(now)
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		if err := movRepo.Create(ctx, &entity.StockMovement{
			ID:        uuid.New().String(),
			Type:      entity.MovementTypeIngress,
			ProductID: product.ID,
			Delta:     qty,
			Unit:      product.Unit,
			Reference: entity.MovementReference{LotID: lot.ID},
			Note:      in.Note,
			CreatedBy: userID,
			Timestamp: now,
		}); err != nil {
			return err
		}
		result = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(result, true), nil
}

// DeactivateLot baja lógica: el lote deja de contar en el total y en FEFO pero se conserva.
// Desactivar un lote ya inactivo no hace nada.
func (uc *LotUseCase) DeactivateLot(ctx context.Context, userID, lotID string) (*dto.ProductResponse, error) {
	var result *entity.Product
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		_ repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error {
		product, idx, err := loadLot(ctx, productRepo, lotID)
		if err != nil {
			return err
		}
		result = product
		lot := &product.Lots[idx]
		if !lot.Active {
			return nil
		}
		now := uc.now()
		removed := lot.QuantityRemaining
		lot.Active = false
		lot.UpdatedAt = now
		product.RecomputeQuantity()
		product.Touch(now)
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		if !removed.IsPositive() {
			return nil
		}
		return movRepo.Create(ctx, &entity.StockMovement{
			ID:        uuid.New().String(),
			Type:      entity.MovementTypeAdjustment,
			ProductID: product.ID,
			Delta:     removed.Neg(),
			Unit:      product.Unit,
			Reference: entity.MovementReference{LotID: lot.ID},
			Note:      "baja de lote " + lot.Code,
			CreatedBy: userID,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(result, true), nil
}

// CorrectLot corrige remanente, vencimiento o factura de un lote activo.
// El remanente debe quedar entre 0 y la cantidad recibida; la diferencia va al libro como ADJUSTMENT.
func (uc *LotUseCase) CorrectLot(ctx context.Context, userID, lotID string, in dto.CorrectLotRequest) (*dto.ProductResponse, error) {
	if in.QuantityRemaining != nil && in.QuantityRemaining.IsNegative() {
		return nil, fmt.Errorf("%w: el remanente no puede ser negativo", domain.ErrInvalidInput)
	}
	var result *entity.Product
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		_ repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error {
		product, idx, err := loadLot(ctx, productRepo, lotID)
		if err != nil {
			return err
		}
		lot := &product.Lots[idx]
		if !lot.Active {
			return fmt.Errorf("%w: el lote %s está dado de baja", domain.ErrConflict, lot.Code)
		}
		now := uc.now()
		delta := decimal.Zero
		if in.QuantityRemaining != nil {
			q := entity.RoundQty(*in.QuantityRemaining)
			if q.GreaterThan(lot.QuantityReceived) {
				return fmt.Errorf("%w: el remanente %s supera lo recibido %s", domain.ErrInvalidInput, q, lot.QuantityReceived)
			}
			delta = entity.RoundQty(q.Sub(lot.QuantityRemaining))
			lot.QuantityRemaining = q
		}
		switch {
		case in.ClearExpiry:
			lot.ExpiresAt = nil
		case in.ExpiresAt != nil:
			exp := *in.ExpiresAt
			lot.ExpiresAt = &exp
		}
		if in.InvoiceRef != nil {
			lot.InvoiceRef = strings.TrimSpace(*in.InvoiceRef)
		}
		lot.UpdatedAt = now
		product.RecomputeQuantity()
		product.Touch(now)
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}
		result = product
		if delta.IsZero() {
			return nil
		}
		note := in.Note
		if note == "" {
			note = "corrección de lote " + lot.Code
		}
		return movRepo.Create(ctx, &entity.StockMovement{
			ID:        uuid.New().String(),
			Type:      entity.MovementTypeAdjustment,
			ProductID: product.ID,
			Delta:     delta,
			Unit:      product.Unit,
			Reference: entity.MovementReference{LotID: lot.ID},
			Note:      note,
			CreatedBy: userID,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(result, true), nil
}

// ListLots lotes del producto: activos primero y, dentro de cada grupo, los más recientes primero.
func (uc *LotUseCase) ListLots(ctx context.Context, productID string, includeInactive bool) ([]dto.LotResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	lots := make([]entity.Lot, 0, len(product.Lots))
	for _, l := range product.Lots {
		if l.Active || includeInactive {
			lots = append(lots, l)
		}
	}
	sort.SliceStable(lots, func(i, j int) bool {
		if lots[i].Active != lots[j].Active {
			return lots[i].Active
		}
		return lots[i].ReceivedAt.After(lots[j].ReceivedAt)
	})
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.ToLotResponse(l))
	}
	return out, nil
}

func loadLot(ctx context.Context, productRepo repository.ProductRepository, lotID string) (*entity.Product, int, error) {
	product, err := productRepo.GetByLotID(ctx, lotID)
	if err != nil {
		return nil, -1, err
	}
	if product == nil {
		return nil, -1, fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
	}
	idx := product.LotIndex(lotID)
	if idx < 0 {
		return nil, -1, fmt.Errorf("%w: lote %s", domain.ErrNotFound, lotID)
	}
	return product, idx, nil
}

// generatedLotCode L-AAAAMMDD-XXXXXX a partir de la fecha de ingreso y el ID del lote.
func generatedLotCode(now time.Time, lotID string) string {
	id := strings.ReplaceAll(lotID, "-", "")
	if len(id) > 6 {
		id = id[:6]
	}
	return fmt.Sprintf("L-%s-%s", now.Format("20060102"), strings.ToUpper(id))
}
