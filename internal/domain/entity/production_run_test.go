package entity_test

import (
	"testing"
	"time"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConsumption_Acumula(t *testing.T) {
	run := &entity.ProductionRun{Status: entity.RunStatusOpen}
	run.MergeConsumption(entity.ConsumedIngredient{
		ProductID: "A", Quantity: decimal.RequireFromString("1.5"),
		Lots: []entity.ConsumedLot{{Code: "L1", Quantity: decimal.RequireFromString("1.5")}},
	})
	run.MergeConsumption(entity.ConsumedIngredient{ProductID: "B", Quantity: decimal.NewFromInt(2)})
	run.MergeConsumption(entity.ConsumedIngredient{
		ProductID: "A", Quantity: decimal.RequireFromString("0.25"), ConversionSkipped: true,
		Lots: []entity.ConsumedLot{{Code: "L2", Quantity: decimal.RequireFromString("0.25")}},
	})

	require.Len(t, run.Consumed, 2)
	a := run.Consumed[0]
	assert.Equal(t, "1.75", a.Quantity.String())
	assert.True(t, a.ConversionSkipped)
	require.Len(t, a.Lots, 2)
	assert.Equal(t, "L2", a.Lots[1].Code)
	assert.True(t, run.HasConsumption())
}

func TestCloseYCancel(t *testing.T) {
	start := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)
	run := &entity.ProductionRun{Status: entity.RunStatusOpen, StartedAt: start}
	run.Close(decimal.RequireFromString("12.0000004"), start.Add(61*time.Second+600*time.Millisecond))
	assert.Equal(t, entity.RunStatusClosed, run.Status)
	assert.False(t, run.IsOpen())
	assert.Equal(t, int64(62), run.DurationSeconds)
	assert.Equal(t, "12", run.ActualOutput.String())

	other := &entity.ProductionRun{Status: entity.RunStatusOpen, StartedAt: start}
	other.Cancel("corte de luz", start.Add(time.Hour))
	assert.Equal(t, entity.RunStatusCancelled, other.Status)
	assert.Equal(t, int64(3600), other.DurationSeconds)
	assert.True(t, other.ActualOutput.IsZero())
}

func TestClone_NoCompartePunteros(t *testing.T) {
	end := time.Now()
	run := &entity.ProductionRun{
		EndedAt:  &end,
		Consumed: []entity.ConsumedIngredient{{ProductID: "A", Lots: []entity.ConsumedLot{{Code: "L1"}}}},
	}
	c := run.Clone()
	c.Consumed[0].Lots[0].Code = "X"
	*c.EndedAt = end.Add(time.Hour)
	assert.Equal(t, "L1", run.Consumed[0].Lots[0].Code)
	assert.True(t, run.EndedAt.Equal(end))
}

func TestHasConsumption_IgnoraEntradasEnCero(t *testing.T) {
	run := &entity.ProductionRun{Status: entity.RunStatusOpen}
	assert.False(t, run.HasConsumption())
	run.MergeConsumption(entity.ConsumedIngredient{ProductID: "A", Quantity: decimal.Zero})
	assert.False(t, run.HasConsumption())
	run.MergeConsumption(entity.ConsumedIngredient{ProductID: "A", Quantity: decimal.RequireFromString("0.5")})
	assert.True(t, run.HasConsumption())
}
