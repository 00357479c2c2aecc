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
	domaininv "github.com/jhoicas/Cocina-api/internal/domain/inventory"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// dailyWindowDays días que cubre el resumen diario cuando no se pide desde cuándo.
const dailyWindowDays = 30

// UsageUseCase registro diario de uso y desperdicio de cocina. Cada registro descuenta lo usado
// por FEFO, deja un movimiento USAGE y guarda lo útil y el desperdicio, todo en una transacción.
type UsageUseCase struct {
	txRunner  ports.UsageTxRunner
	usageRepo repository.UsageRepository
	policy    domaininv.UnitPolicy
	log       zerolog.Logger
	now       ports.Clock
}

// NewUsageUseCase construye el caso de uso.
func NewUsageUseCase(
	txRunner ports.UsageTxRunner,
	usageRepo repository.UsageRepository,
	policy domaininv.UnitPolicy,
	log zerolog.Logger,
) *UsageUseCase {
	return &UsageUseCase{txRunner: txRunner, usageRepo: usageRepo, policy: policy, log: log, now: time.Now}
}

// WithClock reemplaza la fuente de hora (pruebas).
func (uc *UsageUseCase) WithClock(c ports.Clock) *UsageUseCase {
	uc.now = c
	return uc
}

// UsageQuery filtros de List y Daily.
type UsageQuery struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	dto.PageRequest
}

// Record registra el uso de un insumo. Si no alcanza el stock no se registra nada.
func (uc *UsageUseCase) Record(ctx context.Context, userID string, in dto.RecordUsageRequest) (*dto.UsageRecordResponse, error) {
	if strings.TrimSpace(in.ProductID) == "" || !in.Used.IsPositive() {
		return nil, fmt.Errorf("%w: el uso requiere producto y cantidad positiva", domain.ErrInvalidInput)
	}
	if in.Units < 0 {
		return nil, fmt.Errorf("%w: las unidades no pueden ser negativas", domain.ErrInvalidInput)
	}
	var unit entity.Unit
	if strings.TrimSpace(in.Unit) != "" {
		u, ok := entity.ParseUnit(in.Unit)
		if !ok && uc.policy == domaininv.RejectUnknownUnit {
			return nil, fmt.Errorf("%w: unidad desconocida %q", domain.ErrInvalidInput, in.Unit)
		}
		unit = u
	}

	var record *entity.UsageRecord
	err := uc.txRunner.RunUsage(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		usageRepo repository.UsageRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		from := unit
		if from == "" {
			from = product.Unit
		}
		used, skipped, err := domaininv.ConvertWithPolicy(in.Used, from, product.Unit, uc.policy)
		if err != nil {
			return fmt.Errorf("%s: %w", product.Name, err)
		}
		if !used.IsPositive() {
			return fmt.Errorf("%w: %s: cantidad menor a la precisión admitida", domain.ErrInvalidInput, product.Name)
		}
		if skipped {
			uc.log.Warn().
				Str("product_id", product.ID).
				Str("from", from.String()).
				Str("to", product.Unit.String()).
				Msg("conversión de unidad omitida en registro de uso")
		}

		alloc := domaininv.AllocateFEFO(product.Lots, used)
		if alloc.Shortfall.IsPositive() {
			return &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Unit:        product.Unit.String(),
				Required:    used,
				Available:   domaininv.AvailableQuantity(product.Lots),
				Shortfall:   alloc.Shortfall,
			}
		}
		now := uc.now()
		touched := make(map[string]bool, len(alloc.Used))
		for _, u := range alloc.Used {
			touched[u.LotID] = true
		}
		for i := range alloc.Lots {
			if touched[alloc.Lots[i].ID] {
				alloc.Lots[i].UpdatedAt = now
			}
		}
		product.Lots = alloc.Lots
		product.Quantity = alloc.NewTotal
		product.Touch(now)
		if err := productRepo.Update(ctx, product); err != nil {
			return err
		}

		note := strings.TrimSpace(in.Note)
		mov := &entity.StockMovement{
			ID:        uuid.New().String(),
			Type:      entity.MovementTypeUsage,
			ProductID: product.ID,
			Delta:     used.Neg(),
			Unit:      product.Unit,
			Note:      note,
			CreatedBy: userID,
			Timestamp: now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}

		useful, waste := domaininv.UsageWaste(used, in.Units, product.AverageWeight, product.Unit)
		record = &entity.UsageRecord{
			ID:          uuid.New().String(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Unit:        product.Unit,
			Used:        used,
			Units:       in.Units,
			Useful:      useful,
			Waste:       waste,
			MovementID:  mov.ID,
			Note:        note,
			CreatedBy:   userID,
			RecordedAt:  now,
		}
		return usageRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("product_id", record.ProductID).
		Str("used", record.Used.String()).
		Str("waste", record.Waste.String()).
		Msg("uso diario registrado")
	out := dto.ToUsageRecordResponse(record)
	return &out, nil
}

// List registros de uso, más recientes primero.
func (uc *UsageUseCase) List(ctx context.Context, q UsageQuery) (*dto.UsageLogResponse, error) {
	q.DefaultPage()
	if err := checkRange(q.From, q.To); err != nil {
		return nil, err
	}
	list, err := uc.usageRepo.List(ctx, repository.UsageFilter{
		ProductID: q.ProductID,
		From:      q.From,
		To:        q.To,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UsageRecordResponse, 0, len(list))
	for _, u := range list {
		items = append(items, dto.ToUsageRecordResponse(u))
	}
	return &dto.UsageLogResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// Daily agrupa los registros por día UTC, días más recientes primero, con totales por producto.
// Sin From toma los últimos dailyWindowDays días. No pagina.
func (uc *UsageUseCase) Daily(ctx context.Context, q UsageQuery) (*dto.UsageDailyResponse, error) {
	if q.From == nil {
		today := uc.now().UTC().Truncate(24 * time.Hour)
		from := today.AddDate(0, 0, -(dailyWindowDays - 1))
		q.From = &from
	}
	if err := checkRange(q.From, q.To); err != nil {
		return nil, err
	}
	list, err := uc.usageRepo.List(ctx, repository.UsageFilter{ProductID: q.ProductID, From: q.From, To: q.To})
	if err != nil {
		return nil, err
	}

	out := &dto.UsageDailyResponse{Days: []dto.UsageDayDTO{}}
	var day *dto.UsageDayDTO
	totals := map[string]*dto.UsageTotalDTO{}
	flush := func() {
		if day == nil {
			return
		}
		for _, t := range totals {
			day.Totals = append(day.Totals, *t)
		}
		sort.Slice(day.Totals, func(i, j int) bool {
			if day.Totals[i].ProductName != day.Totals[j].ProductName {
				return day.Totals[i].ProductName < day.Totals[j].ProductName
			}
			return day.Totals[i].ProductID < day.Totals[j].ProductID
		})
		out.Days = append(out.Days, *day)
	}
	for _, u := range list {
		date := u.RecordedAt.UTC().Format("2006-01-02")
		if day == nil || day.Date != date {
			flush()
			day = &dto.UsageDayDTO{Date: date}
			totals = map[string]*dto.UsageTotalDTO{}
		}
		day.Records = append(day.Records, dto.ToUsageRecordResponse(u))
		t, ok := totals[u.ProductID]
		if !ok {
			t = &dto.UsageTotalDTO{
				ProductID: u.ProductID, ProductName: u.ProductName, Unit: u.Unit.String(),
				Used: decimal.Zero, Waste: decimal.Zero,
			}
			totals[u.ProductID] = t
		}
		t.Used = entity.RoundQty(t.Used.Add(u.Used))
		t.Waste = entity.RoundQty(t.Waste.Add(u.Waste))
	}
	flush()
	return out, nil
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && !from.Before(*to) {
		return fmt.Errorf("%w: el rango de fechas está vacío", domain.ErrInvalidInput)
	}
	return nil
}
