package production_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/production"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/inventory"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	uc    *production.UseCase
	now   time.Time
}

func newFixture(t *testing.T, policy inventory.UnitPolicy) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), now: t0}
	f.uc = production.NewUseCase(f.store, f.store.Recipes(), f.store.Products(), f.store.Runs(), policy, zerolog.Nop()).
		WithClock(func() time.Time { return f.now })
	return f
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) *time.Time {
	tm, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &tm
}

type lotSpec struct {
	code string
	qty  string
	exp  *time.Time
}

func (f *fixture) product(t *testing.T, id, name string, unit entity.Unit, lots ...lotSpec) {
	t.Helper()
	p := &entity.Product{ID: id, Name: name, Unit: unit, CreatedAt: t0, UpdatedAt: t0}
	for i, l := range lots {
		p.Lots = append(p.Lots, entity.Lot{
			ID:                id + "-" + l.code,
			ProductID:         id,
			Code:              l.code,
			InvoiceRef:        "FAC-" + l.code,
			QuantityReceived:  d(l.qty),
			QuantityRemaining: d(l.qty),
			ExpiresAt:         l.exp,
			ReceivedAt:        t0.Add(-time.Duration(len(lots)-i) * time.Hour),
			Active:            true,
		})
	}
	p.RecomputeQuantity()
	require.NoError(t, f.store.Products().Create(context.Background(), p))
}

func (f *fixture) recipe(t *testing.T, id string, ings ...entity.RecipeIngredient) {
	t.Helper()
	r := &entity.Recipe{ID: id, Name: "Receta " + id, NameKey: "receta " + id, Ingredients: ings, CreatedAt: t0}
	require.NoError(t, f.store.Recipes().Create(context.Background(), r))
}

func (f *fixture) get(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) movements(t *testing.T, runID string) []*entity.StockMovement {
	t.Helper()
	list, err := f.store.Movements().List(context.Background(), repository.MovementFilter{ProductionRunID: runID})
	require.NoError(t, err)
	return list
}

func remaining(p *entity.Product, code string) string {
	for _, l := range p.Lots {
		if l.Code == code {
			return l.QuantityRemaining.String()
		}
	}
	return "missing"
}

func assertInvariant(t *testing.T, p *entity.Product) {
	t.Helper()
	assert.True(t, p.Quantity.Equal(inventory.AvailableQuantity(p.Lots)),
		"%s: quantity %s != suma de lotes %s", p.Name, p.Quantity, inventory.AvailableQuantity(p.Lots))
}

func ing(productID string, unit entity.Unit, perUnit string) entity.RecipeIngredient {
	return entity.RecipeIngredient{ProductID: productID, ProductName: "Insumo " + productID, BaseUnit: unit, QuantityPerUnit: d(perUnit)}
}

// Escenario completo: confirmar sin consumo previo descuenta todo por FEFO.
func TestConfirm_ConsumoDiferidoFEFO(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram,
		lotSpec{"L2", "5", date("2025-02-10")},
		lotSpec{"L1", "10", date("2025-01-10")},
	)
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "0.2"))

	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("50"), CreatedBy: "ana"})
	require.NoError(t, err)
	require.Len(t, run.Required, 1)
	assert.Equal(t, "10", run.Required[0].Quantity.String())
	assert.Equal(t, string(entity.RunStatusOpen), run.Status)

	f.now = t0.Add(90*time.Minute + 400*time.Millisecond)
	closed, err := f.uc.Confirm(ctx, run.ID, "ana", dto.ConfirmRunRequest{ActualOutput: d("50")})
	require.NoError(t, err)

	assert.Equal(t, string(entity.RunStatusClosed), closed.Status)
	assert.Equal(t, "50", closed.ActualOutput.String())
	assert.Equal(t, int64(5400), closed.DurationSeconds)
	require.NotNil(t, closed.EndedAt)
	require.Len(t, closed.Consumed, 1)
	require.Len(t, closed.Consumed[0].Lots, 1)
	assert.Equal(t, "L1", closed.Consumed[0].Lots[0].Code)
	assert.Equal(t, "FAC-L1", closed.Consumed[0].Lots[0].InvoiceRef)

	a := f.get(t, "A")
	assert.Equal(t, "0", remaining(a, "L1"))
	assert.Equal(t, "5", remaining(a, "L2"))
	assert.Equal(t, "5", a.Quantity.String())
	assertInvariant(t, a)

	movs := f.movements(t, run.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeProduction, movs[0].Type)
	assert.Equal(t, "-10", movs[0].Delta.String())
	assert.Equal(t, "R", movs[0].Reference.RecipeID)
}

// Un faltante en el segundo insumo deshace el descuento del primero y deja la corrida abierta.
func TestConfirm_FaltanteRevierteTodo(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"LA", "100", date("2025-03-01")})
	f.product(t, "B", "Manteca", entity.UnitKilogram, lotSpec{"LB", "1", date("2025-03-01")})
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"), ing("B", entity.UnitKilogram, "0.5"))

	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("10")})
	require.NoError(t, err)

	_, err = f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("10")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "B", ise.ProductID)
	assert.Equal(t, "Manteca", ise.ProductName)
	assert.Equal(t, "4", ise.Shortfall.String())
	assert.Equal(t, "1", ise.Available.String())

	assert.Equal(t, "100", f.get(t, "A").Quantity.String())
	assert.Equal(t, "1", f.get(t, "B").Quantity.String())
	assert.Empty(t, f.movements(t, run.ID))

	again, err := f.uc.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.RunStatusOpen), again.Status)
	assert.Empty(t, again.Consumed)
}

func TestConsume_LoteAtomico(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"LA", "10", nil})
	f.product(t, "B", "Leche", entity.UnitLiter, lotSpec{"LB", "1", nil})
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"))
	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("1")})
	require.NoError(t, err)

	_, err = f.uc.Consume(ctx, run.ID, "", dto.ConsumeRunRequest{Items: []dto.ConsumeItemRequest{
		{ProductID: "A", Quantity: d("2"), Unit: "kg"},
		{ProductID: "B", Quantity: d("1500"), Unit: "ml"},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, "10", f.get(t, "A").Quantity.String())
	assert.Empty(t, f.movements(t, run.ID))
}

// Consumos sucesivos del mismo producto se acumulan y confirm ya no vuelve a descontar.
func TestConsume_AcumulaYConfirmNoReconsume(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram,
		lotSpec{"L1", "2.5", date("2025-01-10")},
		lotSpec{"L2", "10", date("2025-02-10")},
	)
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"))
	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("8")})
	require.NoError(t, err)

	_, err = f.uc.Consume(ctx, run.ID, "", dto.ConsumeRunRequest{Items: []dto.ConsumeItemRequest{
		{ProductID: "A", Quantity: d("2"), Unit: "kg"},
	}})
	require.NoError(t, err)
	after, err := f.uc.Consume(ctx, run.ID, "", dto.ConsumeRunRequest{Items: []dto.ConsumeItemRequest{
		{ProductID: "A", Quantity: d("1000"), Unit: "g"},
	}})
	require.NoError(t, err)

	require.Len(t, after.Consumed, 1)
	assert.Equal(t, "3", after.Consumed[0].Quantity.String())
	assert.Equal(t, "kg", after.Consumed[0].Unit)
	require.Len(t, after.Consumed[0].Lots, 3)
	assert.Equal(t, "L1", after.Consumed[0].Lots[0].Code)
	assert.Equal(t, "L1", after.Consumed[0].Lots[1].Code)
	assert.Equal(t, "0.5", after.Consumed[0].Lots[1].Quantity.String())
	assert.Equal(t, "L2", after.Consumed[0].Lots[2].Code)

	_, err = f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("3")})
	require.NoError(t, err)

	a := f.get(t, "A")
	assert.Equal(t, "9.5", a.Quantity.String())
	assertInvariant(t, a)
	assert.Len(t, f.movements(t, run.ID), 2)
}

func TestConfirm_SegundaVezFalla(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"L1", "10", nil})
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"))
	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("2")})
	require.NoError(t, err)

	_, err = f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("2")})
	require.NoError(t, err)
	_, err = f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("2")})
	assert.True(t, errors.Is(err, domain.ErrRunClosed))

	_, err = f.uc.Consume(ctx, run.ID, "", dto.ConsumeRunRequest{Items: []dto.ConsumeItemRequest{{ProductID: "A", Quantity: d("1"), Unit: "kg"}}})
	assert.True(t, errors.Is(err, domain.ErrRunClosed))

	assert.Equal(t, "8", f.get(t, "A").Quantity.String())
	assert.Len(t, f.movements(t, run.ID), 1)
}

// Los movimientos de una corrida suman exactamente el consumo (negativo) más lo producido.
func TestConfirm_ProductoFinalYConservacion(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"L1", "10", nil})
	f.product(t, "B", "Leche", entity.UnitLiter, lotSpec{"L1", "5", nil})
	f.product(t, "PAN", "Pan", entity.UnitPiece)
	f.recipe(t, "R", ing("A", entity.UnitGram, "250"), ing("B", entity.UnitMilliliter, "100"))

	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("20")})
	require.NoError(t, err)
	assert.Equal(t, "5000", run.Required[0].Quantity.String())
	assert.Equal(t, "g", run.Required[0].Unit)

	exp := date("2025-01-08")
	closed, err := f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("18"), FinalProductID: "PAN", FinalExpiry: exp})
	require.NoError(t, err)
	assert.Equal(t, "PAN", closed.FinalProductID)
	require.NotEmpty(t, closed.FinalLotID)

	pan := f.get(t, "PAN")
	require.Len(t, pan.Lots, 1)
	lot := pan.Lots[0]
	suffix := production.RunSuffix(run.ID)
	assert.Equal(t, "RUN-"+suffix, lot.Code)
	assert.Equal(t, "PROD-"+suffix, lot.InvoiceRef)
	assert.Equal(t, "18", lot.QuantityRemaining.String())
	require.NotNil(t, lot.ExpiresAt)
	assert.True(t, lot.ExpiresAt.Equal(*exp))
	assert.Equal(t, "18", pan.Quantity.String())
	assertInvariant(t, pan)

	assert.Equal(t, "5", f.get(t, "A").Quantity.String())
	assert.Equal(t, "3", f.get(t, "B").Quantity.String())

	movs := f.movements(t, run.ID)
	require.Len(t, movs, 3)
	sum := decimal.Zero
	for _, m := range movs {
		sum = sum.Add(m.Delta)
	}
	assert.Equal(t, "11", sum.String(), "-5 kg -2 l +18 unidades")
}

func TestConfirm_ProduccionCeroNoStockea(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"L1", "10", nil})
	f.product(t, "PAN", "Pan", entity.UnitPiece)
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"))
	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("1")})
	require.NoError(t, err)

	closed, err := f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: decimal.Zero, FinalProductID: "PAN"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.RunStatusClosed), closed.Status)
	assert.Empty(t, closed.FinalLotID)
	assert.Empty(t, f.get(t, "PAN").Lots)
	assert.Len(t, f.movements(t, run.ID), 1)
}

func TestConfirm_ProductoFinalInexistente(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"L1", "10", nil})
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"))
	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("1")})
	require.NoError(t, err)

	_, err = f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("1"), FinalProductID: "nada"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "10", f.get(t, "A").Quantity.String())
}

func TestCancel(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"L1", "10", nil})
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"))
	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("1")})
	require.NoError(t, err)

	f.now = t0.Add(time.Minute)
	cancelled, err := f.uc.Cancel(ctx, run.ID, dto.CancelRunRequest{Reason: " sin gas "})
	require.NoError(t, err)
	assert.Equal(t, string(entity.RunStatusCancelled), cancelled.Status)
	assert.Equal(t, "sin gas", cancelled.CancelReason)
	assert.Equal(t, int64(60), cancelled.DurationSeconds)

	_, err = f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("1")})
	assert.True(t, errors.Is(err, domain.ErrRunClosed))
	_, err = f.uc.Cancel(ctx, run.ID, dto.CancelRunRequest{})
	assert.True(t, errors.Is(err, domain.ErrRunClosed))
	assert.Equal(t, "10", f.get(t, "A").Quantity.String())
}

func TestStart_Validaciones(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()

	_, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "nada", PlannedOutput: d("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: decimal.Zero})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.uc.Confirm(ctx, "nada", "", dto.ConfirmRunRequest{ActualOutput: d("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.uc.Consume(ctx, "nada", "", dto.ConsumeRunRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// Con passthrough una unidad sin conversión se descuenta tal cual y queda marcada.
func TestConfirm_PoliticaDeUnidades(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "H", "Huevos", entity.UnitKilogram, lotSpec{"L1", "30", nil})
	f.recipe(t, "R", ing("H", entity.UnitPiece, "2"))
	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("3")})
	require.NoError(t, err)

	closed, err := f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("3")})
	require.NoError(t, err)
	require.Len(t, closed.Consumed, 1)
	assert.True(t, closed.Consumed[0].ConversionSkipped)
	assert.Equal(t, "6", closed.Consumed[0].Quantity.String())

	strict := newFixture(t, inventory.RejectUnknownUnit)
	strict.product(t, "H", "Huevos", entity.UnitKilogram, lotSpec{"L1", "30", nil})
	strict.recipe(t, "R", ing("H", entity.UnitPiece, "2"))
	run, err = strict.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("3")})
	require.NoError(t, err)
	_, err = strict.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("3")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, "30", strict.get(t, "H").Quantity.String())
}

func TestPlan(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"L1", "1", nil})
	f.product(t, "B", "Leche", entity.UnitLiter, lotSpec{"L1", "5", nil})
	f.recipe(t, "R", ing("A", entity.UnitGram, "300"), ing("B", entity.UnitMilliliter, "200"))

	plan, err := f.uc.Plan(ctx, dto.PlanRunRequest{RecipeID: "R", PlannedOutput: d("5")})
	require.NoError(t, err)
	assert.False(t, plan.Feasible)
	require.Len(t, plan.Ingredients, 2)
	assert.Equal(t, "1.5", plan.Ingredients[0].RequiredInStock.String())
	assert.Equal(t, "0.5", plan.Ingredients[0].Shortfall.String())
	assert.False(t, plan.Ingredients[0].Sufficient)
	assert.True(t, plan.Ingredients[1].Sufficient)

	runs, err := f.uc.List(ctx, dto.RunFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, runs.Items, "planificar no crea corridas")
}

func TestList_OrdenDescendente(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram)
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"))

	var ids []string
	for i := 0; i < 3; i++ {
		f.now = t0.Add(time.Duration(i) * time.Hour)
		run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("1")})
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	_, err := f.uc.Cancel(ctx, ids[1], dto.CancelRunRequest{})
	require.NoError(t, err)

	all, err := f.uc.List(ctx, dto.RunFilterRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all.Items[0].ID, all.Items[1].ID, all.Items[2].ID})

	open, err := f.uc.List(ctx, dto.RunFilterRequest{Status: "open"})
	require.NoError(t, err)
	assert.Len(t, open.Items, 2)

	_, err = f.uc.List(ctx, dto.RunFilterRequest{Status: "paused"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// Una cantidad que se redondea a cero en la unidad del producto se rechaza y no cuenta como consumo.
func TestConsume_CantidadBajoPrecisionSeRechaza(t *testing.T) {
	f := newFixture(t, inventory.PassthroughOnUnknownUnit)
	ctx := context.Background()
	f.product(t, "A", "Harina", entity.UnitKilogram, lotSpec{"L1", "10", nil})
	f.recipe(t, "R", ing("A", entity.UnitKilogram, "1"))
	run, err := f.uc.Start(ctx, dto.StartRunRequest{RecipeID: "R", PlannedOutput: d("5")})
	require.NoError(t, err)

	_, err = f.uc.Consume(ctx, run.ID, "", dto.ConsumeRunRequest{Items: []dto.ConsumeItemRequest{
		{ProductID: "A", Quantity: d("0.0001"), Unit: "g"},
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	open, err := f.uc.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, open.Consumed)
	assert.Empty(t, f.movements(t, run.ID))

	closed, err := f.uc.Confirm(ctx, run.ID, "", dto.ConfirmRunRequest{ActualOutput: d("5")})
	require.NoError(t, err)
	require.Len(t, closed.Consumed, 1)
	assert.Equal(t, "5", closed.Consumed[0].Quantity.String())
	a := f.get(t, "A")
	assert.Equal(t, "5", a.Quantity.String())
	assertInvariant(t, a)
}
