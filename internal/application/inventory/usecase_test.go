package inventory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProduct(t *testing.T, store *memory.Store, id string, unit entity.Unit, lots ...entity.Lot) {
	t.Helper()
	p := &entity.Product{ID: id, Name: "Producto " + id, Unit: unit, Lots: lots, CreatedAt: now, UpdatedAt: now}
	p.RecomputeQuantity()
	require.NoError(t, store.Products().Create(context.Background(), p))
}

func lot(id, code, qty string, exp *time.Time) entity.Lot {
	return entity.Lot{
		ID: id, Code: code, InvoiceRef: "FAC-" + code,
		QuantityReceived: d(qty), QuantityRemaining: d(qty),
		ExpiresAt: exp, ReceivedAt: now.Add(-48 * time.Hour), Active: true,
	}
}

func movementsOf(t *testing.T, store *memory.Store, productID string) []*entity.StockMovement {
	t.Helper()
	list, err := store.Movements().List(context.Background(), repository.MovementFilter{ProductID: productID})
	require.NoError(t, err)
	return list
}

func TestAddLot_GeneraCodigoYMovimiento(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", entity.UnitKilogram)
	uc := inventory.NewLotUseCase(store, store.Products()).WithClock(clock)

	exp := now.AddDate(0, 0, 7)
	out, err := uc.AddLot(context.Background(), "u1", dto.AddLotRequest{
		ProductID: "P", InvoiceRef: " R-0001 ", Quantity: d("12.5"), ExpiresAt: &exp,
	})
	require.NoError(t, err)
	assert.Equal(t, "12.5", out.Quantity.String())
	require.Len(t, out.Lots, 1)
	assert.True(t, strings.HasPrefix(out.Lots[0].Code, "L-20250310-"))
	assert.Len(t, out.Lots[0].Code, len("L-20250310-")+6)
	assert.Equal(t, "R-0001", out.Lots[0].InvoiceRef)

	movs := movementsOf(t, store, "P")
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeIngress, movs[0].Type)
	assert.Equal(t, "12.5", movs[0].Delta.String())
	assert.Equal(t, out.Lots[0].ID, movs[0].Reference.LotID)
	assert.Equal(t, "u1", movs[0].CreatedBy)
}

func TestAddLot_Validaciones(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", entity.UnitKilogram, lot("l1", "A1", "1", nil))
	uc := inventory.NewLotUseCase(store, store.Products()).WithClock(clock)
	ctx := context.Background()

	_, err := uc.AddLot(ctx, "", dto.AddLotRequest{ProductID: "P", Quantity: decimal.Zero})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.AddLot(ctx, "", dto.AddLotRequest{ProductID: "P", Quantity: d("0.0000001")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.AddLot(ctx, "", dto.AddLotRequest{ProductID: "nada", Quantity: d("1")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = uc.AddLot(ctx, "", dto.AddLotRequest{ProductID: "P", Code: "A1", Quantity: d("1")})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Empty(t, movementsOf(t, store, "P"))
}

func TestDeactivateLot_Idempotente(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", entity.UnitLiter, lot("l1", "A1", "3", nil), lot("l2", "A2", "2", nil))
	uc := inventory.NewLotUseCase(store, store.Products()).WithClock(clock)
	ctx := context.Background()

	out, err := uc.DeactivateLot(ctx, "u1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "2", out.Quantity.String())

	out, err = uc.DeactivateLot(ctx, "u1", "l1")
	require.NoError(t, err)
	assert.Equal(t, "2", out.Quantity.String())

	movs := movementsOf(t, store, "P")
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeAdjustment, movs[0].Type)
	assert.Equal(t, "-3", movs[0].Delta.String())

	lots, err := uc.ListLots(ctx, "P", false)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "A2", lots[0].Code)

	all, err := uc.ListLots(ctx, "P", true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[1].Active)

	_, err = uc.DeactivateLot(ctx, "u1", "nada")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCorrectLot(t *testing.T) {
	store := memory.NewStore()
	exp := now.AddDate(0, 0, 3)
	seedProduct(t, store, "P", entity.UnitKilogram, lot("l1", "A1", "10", &exp))
	uc := inventory.NewLotUseCase(store, store.Products()).WithClock(clock)
	ctx := context.Background()

	q := d("7.25")
	inv := "R-99"
	out, err := uc.CorrectLot(ctx, "u1", "l1", dto.CorrectLotRequest{QuantityRemaining: &q, ClearExpiry: true, InvoiceRef: &inv})
	require.NoError(t, err)
	assert.Equal(t, "7.25", out.Quantity.String())
	assert.Nil(t, out.Lots[0].ExpiresAt)
	assert.Equal(t, "R-99", out.Lots[0].InvoiceRef)

	movs := movementsOf(t, store, "P")
	require.Len(t, movs, 1)
	assert.Equal(t, "-2.75", movs[0].Delta.String())
	assert.Equal(t, "corrección de lote A1", movs[0].Note)

	over := d("11")
	_, err = uc.CorrectLot(ctx, "u1", "l1", dto.CorrectLotRequest{QuantityRemaining: &over})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	neg := d("-1")
	_, err = uc.CorrectLot(ctx, "u1", "l1", dto.CorrectLotRequest{QuantityRemaining: &neg})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.DeactivateLot(ctx, "u1", "l1")
	require.NoError(t, err)
	_, err = uc.CorrectLot(ctx, "u1", "l1", dto.CorrectLotRequest{InvoiceRef: &inv})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestLedger_FiltraPorTipo(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", entity.UnitKilogram)
	lots := inventory.NewLotUseCase(store, store.Products()).WithClock(clock)
	ctx := context.Background()

	added, err := lots.AddLot(ctx, "", dto.AddLotRequest{ProductID: "P", Code: "X", Quantity: d("4")})
	require.NoError(t, err)
	_, err = lots.DeactivateLot(ctx, "", added.Lots[0].ID)
	require.NoError(t, err)

	ledger := inventory.NewLedgerUseCase(store.Movements())
	all, err := ledger.List(ctx, inventory.MovementQuery{ProductID: "P"})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 20, all.Page.Limit)

	adj, err := ledger.List(ctx, inventory.MovementQuery{ProductID: "P", Type: "ADJUSTMENT"})
	require.NoError(t, err)
	require.Len(t, adj.Items, 1)
	assert.Equal(t, "-4", adj.Items[0].Delta.String())

	_, err = ledger.List(ctx, inventory.MovementQuery{Type: "SALE"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
