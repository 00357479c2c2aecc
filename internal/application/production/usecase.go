// Package production implementa el ciclo de vida de las corridas de producción:
// planificación, inicio, consumo FEFO de insumos, confirmación y cancelación.
package production

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/inventory"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// UseCase orquesta las corridas. Consume y Confirm se ejecutan en una sola transacción:
// o se aplican todos los descuentos, movimientos y el cambio de estado, o ninguno.
type UseCase struct {
	txRunner    ports.TxRunner
	recipeRepo  repository.RecipeRepository
	productRepo repository.ProductRepository
	runRepo     repository.ProductionRunRepository
	policy      inventory.UnitPolicy
	log         zerolog.Logger
	now         ports.Clock
}

// NewUseCase construye el caso de uso. Los repositorios recibidos se usan fuera de transacción
// (lecturas y alta de corridas).
func NewUseCase(
	txRunner ports.TxRunner,
	recipeRepo repository.RecipeRepository,
	productRepo repository.ProductRepository,
	runRepo repository.ProductionRunRepository,
	policy inventory.UnitPolicy,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		recipeRepo:  recipeRepo,
		productRepo: productRepo,
		runRepo:     runRepo,
		policy:      policy,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza la fuente de hora (pruebas).
func (uc *UseCase) WithClock(c ports.Clock) *UseCase {
	uc.now = c
	return uc
}

func requiredFor(recipe *entity.Recipe, plannedOutput decimal.Decimal) []entity.RequiredIngredient {
	out := make([]entity.RequiredIngredient, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		out = append(out, entity.RequiredIngredient{
			ProductID:   ing.ProductID,
			ProductName: ing.ProductName,
			Unit:        ing.BaseUnit,
			Quantity:    entity.RoundQty(ing.QuantityPerUnit.Mul(plannedOutput)),
		})
	}
	return out
}

// Start crea la corrida en estado open con los requerimientos calculados sobre la receta actual.
func (uc *UseCase) Start(ctx context.Context, in dto.StartRunRequest) (*dto.RunResponse, error) {
	if strings.TrimSpace(in.RecipeID) == "" || !in.PlannedOutput.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	recipe, err := uc.recipeRepo.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("%w: receta %s", domain.ErrNotFound, in.RecipeID)
	}
	planned := entity.RoundQty(in.PlannedOutput)
	now := uc.now()
	run := &entity.ProductionRun{
		ID:            uuid.New().String(),
		RecipeID:      recipe.ID,
		RecipeName:    recipe.Name,
		PlannedOutput: planned,
		ActualOutput:  decimal.Zero,
		Required:      requiredFor(recipe, planned),
		StartedAt:     now,
		Status:        entity.RunStatusOpen,
		CreatedBy:     strings.TrimSpace(in.CreatedBy),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}
	return dto.ToRunResponse(run), nil
}

// Consume descuenta ya los insumos elegidos por el operador. Un faltante en cualquier ítem
// aborta todo el lote. Lo consumido se acumula en la corrida.
func (uc *UseCase) Consume(ctx context.Context, runID, actor string, in dto.ConsumeRunRequest) (*dto.RunResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la lista de insumos está vacía", domain.ErrInvalidInput)
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" || !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cada insumo requiere producto y cantidad positiva", domain.ErrInvalidInput)
		}
		if _, ok := entity.ParseUnit(it.Unit); !ok && it.Unit != "" && uc.policy == inventory.RejectUnknownUnit {
			return nil, fmt.Errorf("%w: unidad desconocida %q", domain.ErrInvalidInput, it.Unit)
		}
	}

	var result *entity.ProductionRun
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		runRepo repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error {
		run, err := loadOpenRun(ctx, runRepo, runID)
		if err != nil {
			return err
		}
		now := uc.now()
		for _, it := range in.Items {
			consumed, err := uc.draw(ctx, productRepo, movRepo, run, it.ProductID, it.Quantity, entity.Unit(it.Unit), actor, now)
			if err != nil {
				return err
			}
			run.MergeConsumption(consumed)
		}
		run.UpdatedAt = now
		if err := runRepo.Update(ctx, run); err != nil {
			return err
		}
		result = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.ToRunResponse(result), nil
}

// Confirm cierra la corrida. Si todavía no se consumió nada, descuenta ahora todos los
// requerimientos; si ya hubo consumo no vuelve a descontar. Con producto final y
// producción positiva crea un lote nuevo con lo producido.
func (uc *UseCase) Confirm(ctx context.Context, runID, actor string, in dto.ConfirmRunRequest) (*dto.RunResponse, error) {
	if in.ActualOutput.IsNegative() {
		return nil, fmt.Errorf("%w: la producción real no puede ser negativa", domain.ErrInvalidInput)
	}

	var result *entity.ProductionRun
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		runRepo repository.ProductionRunRepository,
		movRepo repository.StockMovementRepository,
	) error {
		run, err := loadOpenRun(ctx, runRepo, runID)
		if err != nil {
			return err
		}
		now := uc.now()

		if !run.HasConsumption() {
			for _, req := range run.Required {
				if !req.Quantity.IsPositive() {
					continue
				}
				consumed, err := uc.draw(ctx, productRepo, movRepo, run, req.ProductID, req.Quantity, req.Unit, actor, now)
				if err != nil {
					return err
				}
				run.MergeConsumption(consumed)
			}
		}

		run.Close(in.ActualOutput, now)

		if in.FinalProductID != "" {
			run.FinalProductID = in.FinalProductID
			if run.ActualOutput.IsPositive() {
				lotID, err := uc.stockFinalProduct(ctx, productRepo, movRepo, run, in.FinalExpiry, actor, now)
				if err != nil {
					return err
				}
				run.FinalLotID = lotID
			}
		}

		if err := runRepo.Update(ctx, run); err != nil {
			return err
		}
		result = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("run_id", result.ID).
		Str("recipe", result.RecipeName).
		Str("actual_output", result.ActualOutput.String()).
		Int64("duration_sec", result.DurationSeconds).
		Msg("corrida de producción confirmada")
	return dto.ToRunResponse(result), nil
}

// Cancel abandona una corrida abierta. Lo ya consumido no se repone.
func (uc *UseCase) Cancel(ctx context.Context, runID string, in dto.CancelRunRequest) (*dto.RunResponse, error) {
	var result *entity.ProductionRun
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		_ repository.ProductRepository,
		runRepo repository.ProductionRunRepository,
		_ repository.StockMovementRepository,
	) error {
		run, err := loadOpenRun(ctx, runRepo, runID)
		if err != nil {
			return err
		}
		run.Cancel(strings.TrimSpace(in.Reason), uc.now())
		if err := runRepo.Update(ctx, run); err != nil {
			return err
		}
		result = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.ToRunResponse(result), nil
}

// Get obtiene una corrida por ID.
func (uc *UseCase) Get(ctx context.Context, runID string) (*dto.RunResponse, error) {
	run, err := uc.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: corrida %s", domain.ErrNotFound, runID)
	}
	return dto.ToRunResponse(run), nil
}

// List lista corridas, más recientes primero.
func (uc *UseCase) List(ctx context.Context, in dto.RunFilterRequest) (*dto.RunListResponse, error) {
	in.DefaultPage()
	filter, err := toRunFilter(in)
	if err != nil {
		return nil, err
	}
	runs, err := uc.runRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RunResponse, 0, len(runs))
	for _, r := range runs {
		items = append(items, *dto.ToRunResponse(r))
	}
	return &dto.RunListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

func toRunFilter(in dto.RunFilterRequest) (repository.RunFilter, error) {
	f := repository.RunFilter{
		RecipeID: in.RecipeID,
		From:     in.From,
		To:       in.To,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}
	switch entity.RunStatus(in.Status) {
	case "":
	case entity.RunStatusOpen, entity.RunStatusClosed, entity.RunStatusCancelled:
		f.Status = entity.RunStatus(in.Status)
	default:
		return f, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	return f, nil
}

func loadOpenRun(ctx context.Context, runRepo repository.ProductionRunRepository, runID string) (*entity.ProductionRun, error) {
	run, err := runRepo.GetForUpdate(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: corrida %s", domain.ErrNotFound, runID)
	}
	if !run.IsOpen() {
		return nil, fmt.Errorf("%w: corrida %s en estado %s", domain.ErrRunClosed, run.ID, run.Status)
	}
	return run, nil
}

// draw descuenta quantity (expresada en unit) del producto por FEFO, persiste los lotes
// y registra el movimiento negativo. Devuelve el consumo en la unidad del producto.
func (uc *UseCase) draw(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	run *entity.ProductionRun,
	productID string,
	quantity decimal.Decimal,
	unit entity.Unit,
	actor string,
	now time.Time,
) (entity.ConsumedIngredient, error) {
	product, err := productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return entity.ConsumedIngredient{}, err
	}
	if product == nil {
		return entity.ConsumedIngredient{}, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if unit == "" {
		unit = product.Unit
	}

	amount, skipped, err := inventory.ConvertWithPolicy(quantity, unit, product.Unit, uc.policy)
	if err != nil {
		return entity.ConsumedIngredient{}, fmt.Errorf("%s: %w", product.Name, err)
	}
	if !amount.IsPositive() {
		return entity.ConsumedIngredient{}, fmt.Errorf("%w: %s: cantidad menor a la precisión admitida",
			domain.ErrInvalidInput, product.Name)
	}
	if skipped {
		uc.log.Warn().
			Str("run_id", run.ID).
			Str("product_id", product.ID).
			Str("from", unit.String()).
			Str("to", product.Unit.String()).
			Str("quantity", quantity.String()).
			Msg("conversión de unidad omitida, se descuenta la cantidad sin convertir")
	}

	alloc := inventory.AllocateFEFO(product.Lots, amount)
	if alloc.Shortfall.IsPositive() {
		return entity.ConsumedIngredient{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Unit:        product.Unit.String(),
			Required:    amount,
			Available:   inventory.AvailableQuantity(product.Lots),
			Shortfall:   alloc.Shortfall,
		}
	}

	for _, used := range alloc.Used {
		if i := indexOfLot(alloc.Lots, used.LotID); i >= 0 {
			alloc.Lots[i].UpdatedAt = now
		}
	}
	product.Lots = alloc.Lots
	product.Quantity = alloc.NewTotal
	product.Touch(now)
	if err := productRepo.Update(ctx, product); err != nil {
		return entity.ConsumedIngredient{}, err
	}

	consumed := alloc.Consumed()
	if consumed.IsPositive() {
		mov := &entity.StockMovement{
			ID:        uuid.New().String(),
			Type:      entity.MovementTypeProduction,
			ProductID: product.ID,
			Delta:     consumed.Neg(),
			Unit:      product.Unit,
			Reference: entity.MovementReference{ProductionRunID: run.ID, RecipeID: run.RecipeID},
			CreatedBy: actor,
			Timestamp: now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return entity.ConsumedIngredient{}, err
		}
	}

	return entity.ConsumedIngredient{
		ProductID:         product.ID,
		ProductName:       product.Name,
		Unit:              product.Unit,
		Quantity:          consumed,
		ConversionSkipped: skipped,
		Lots:              alloc.Used,
	}, nil
}

// stockFinalProduct ingresa lo producido como un lote nuevo del producto final.
// La cantidad se toma tal cual en la unidad del producto.
func (uc *UseCase) stockFinalProduct(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	run *entity.ProductionRun,
	expiry *time.Time,
	actor string,
	now time.Time,
) (string, error) {
	product, err := productRepo.GetForUpdate(ctx, run.FinalProductID)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", fmt.Errorf("%w: producto final %s", domain.ErrNotFound, run.FinalProductID)
	}

	suffix := RunSuffix(run.ID)
	lot := entity.Lot{
		ID:                uuid.New().String(),
		ProductID:         product.ID,
		Code:              "RUN-" + suffix,
		InvoiceRef:        "PROD-" + suffix,
		QuantityReceived:  run.ActualOutput,
		QuantityRemaining: run.ActualOutput,
		ReceivedAt:        now,
		Active:            true,
		UpdatedAt:         now,
	}
	if expiry != nil {
		exp := *expiry
		lot.ExpiresAt = &exp
	}
	if product.HasLotCode(lot.Code) {
		return "", fmt.Errorf("%w: el producto ya tiene el lote %s", domain.ErrDuplicate, lot.Code)
	}
	product.Lots = append(product.Lots, lot)
	product.RecomputeQuantity()
	product.Touch(now)
	if err := productRepo.Update(ctx, product); err != nil {
		return "", err
	}

	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		Type:      entity.MovementTypeProduction,
		ProductID: product.ID,
		Delta:     run.ActualOutput,
		Unit:      product.Unit,
		Reference: entity.MovementReference{ProductionRunID: run.ID, RecipeID: run.RecipeID, LotID: lot.ID},
		CreatedBy: actor,
		Timestamp: now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return "", err
	}
	return lot.ID, nil
}

// RunSuffix últimos 8 caracteres del ID de la corrida, usados en el código de lote del producto final.
func RunSuffix(runID string) string {
	id := strings.ReplaceAll(runID, "-", "")
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

func indexOfLot(lots []entity.Lot, id string) int {
	for i := range lots {
		if lots[i].ID == id {
			return i
		}
	}
	return -1
}
