package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int) *time.Time {
	t := now.AddDate(0, 0, n)
	return &t
}

func TestStockAlerts_NivelesYOrden(t *testing.T) {
	store := memory.NewStore()
	inactive := lot("l5", "INACT", "1", days(1))
	inactive.Active = false
	depleted := lot("l6", "AGOT", "1", days(1))
	depleted.QuantityRemaining = d("0")
	seedProduct(t, store, "P", entity.UnitKilogram,
		lot("l1", "LEJOS", "1", days(30)),
		lot("l2", "AVISO", "1", days(8)),
		lot("l3", "URGE", "1", days(2)),
		lot("l4", "VENCIDO", "1", days(-1)),
		inactive,
		depleted,
		lot("l7", "SINFECHA", "1", nil),
	)

	uc := inventory.NewAlertsUseCase(store.Products(), 10, 5).WithClock(clock)
	out, err := uc.StockAlerts(context.Background())
	require.NoError(t, err)

	require.Len(t, out.Expiring, 3)
	assert.Equal(t, "VENCIDO", out.Expiring[0].Code)
	assert.Equal(t, dto.AlertLevelExpired, out.Expiring[0].Level)
	assert.Equal(t, -1, out.Expiring[0].DaysLeft)
	assert.Equal(t, "URGE", out.Expiring[1].Code)
	assert.Equal(t, dto.AlertLevelUrgent, out.Expiring[1].Level)
	assert.Equal(t, "AVISO", out.Expiring[2].Code)
	assert.Equal(t, dto.AlertLevelWarning, out.Expiring[2].Level)
	assert.Equal(t, 8, out.Expiring[2].DaysLeft)
	assert.Empty(t, out.BelowCritical)
}

func TestStockAlerts_BajoCritico(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, p := range []*entity.Product{
		{ID: "A", Name: "Azúcar", Unit: entity.UnitKilogram, CriticalStock: d("5"), Lots: []entity.Lot{lot("a1", "A1", "2", nil)}},
		{ID: "B", Name: "Sal", Unit: entity.UnitKilogram, CriticalStock: d("1"), Lots: []entity.Lot{lot("b1", "B1", "2", nil)}},
		{ID: "C", Name: "Agua", Unit: entity.UnitLiter},
	} {
		p.RecomputeQuantity()
		require.NoError(t, store.Products().Create(ctx, p))
	}

	out, err := inventory.NewAlertsUseCase(store.Products(), 0, 0).WithClock(clock).StockAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, out.BelowCritical, 1)
	assert.Equal(t, "A", out.BelowCritical[0].ProductID)
	assert.Equal(t, now, out.GeneratedAt)
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 1, inventory.DaysUntil(now, now.Add(time.Hour)))
	assert.Equal(t, 0, inventory.DaysUntil(now, now))
	assert.Equal(t, 2, inventory.DaysUntil(now, now.Add(25*time.Hour)))
	assert.Equal(t, -1, inventory.DaysUntil(now, now.Add(-24*time.Hour)))
}
