package mongodb

import (
	"testing"
	"time"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestDecimal128_SinPerdida(t *testing.T) {
	for _, s := range []string{"0", "0.000001", "12.5", "-3.25", "123456789.123456"} {
		d := decimal.RequireFromString(s)
		assert.True(t, d.Equal(fromDec(dec(d))), s)
	}
}

func TestProductDoc_LotesEmbebidos(t *testing.T) {
	exp := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	p := &entity.Product{
		ID: "P", Name: "Harina", Unit: entity.UnitKilogram, Version: 3,
		Lots: []entity.Lot{
			{ID: "l1", Code: "A", QuantityReceived: decimal.NewFromInt(5), QuantityRemaining: decimal.RequireFromString("2.5"), ExpiresAt: &exp, Active: true},
			{ID: "l2", Code: "B", QuantityReceived: decimal.NewFromInt(1), QuantityRemaining: decimal.Zero},
		},
	}
	p.RecomputeQuantity()

	back := toProductDoc(p).entity()
	require.Len(t, back.Lots, 2)
	assert.Equal(t, "P", back.Lots[0].ProductID)
	assert.Equal(t, "2.5", back.Quantity.String())
	assert.True(t, back.Lots[0].ExpiresAt.Equal(exp))
	assert.Nil(t, back.Lots[1].ExpiresAt)
	assert.False(t, back.Lots[1].Active)
	assert.Equal(t, int64(3), back.Version)
}

func TestRunDoc_TrazaDeLotes(t *testing.T) {
	run := &entity.ProductionRun{
		ID: "R", Status: entity.RunStatusOpen, PlannedOutput: decimal.NewFromInt(10),
		Required: []entity.RequiredIngredient{{ProductID: "P", Unit: entity.UnitGram, Quantity: decimal.NewFromInt(2000)}},
		Consumed: []entity.ConsumedIngredient{{
			ProductID: "P", Unit: entity.UnitKilogram, Quantity: decimal.NewFromInt(2), ConversionSkipped: true,
			Lots: []entity.ConsumedLot{{LotID: "l1", Code: "A", Quantity: decimal.NewFromInt(2)}},
		}},
	}
	back := toRunDoc(run).entity()
	assert.Equal(t, entity.RunStatusOpen, back.Status)
	require.Len(t, back.Consumed, 1)
	assert.True(t, back.Consumed[0].ConversionSkipped)
	require.Len(t, back.Consumed[0].Lots, 1)
	assert.Equal(t, "A", back.Consumed[0].Lots[0].Code)
	assert.Equal(t, "2000", back.Required[0].Quantity.String())
	assert.Nil(t, back.EndedAt)
}

func TestUsageDoc_PorBSON(t *testing.T) {
	at := time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC)
	u := &entity.UsageRecord{
		ID: "u1", ProductID: "P", ProductName: "Papa", Unit: entity.UnitKilogram,
		Used: decimal.NewFromInt(3), Units: 20, Useful: decimal.RequireFromString("2.4"),
		Waste: decimal.RequireFromString("0.6"), MovementID: "m1", CreatedBy: "u-1", RecordedAt: at,
	}
	raw, err := bson.Marshal(toUsageDoc(u))
	require.NoError(t, err)
	var d usageDoc
	require.NoError(t, bson.Unmarshal(raw, &d))

	back := d.entity()
	assert.Equal(t, "Papa", back.ProductName)
	assert.Equal(t, 20, back.Units)
	assert.Equal(t, "0.6", back.Waste.String())
	assert.Equal(t, "2.4", back.Useful.String())
	assert.True(t, back.RecordedAt.Equal(at))
	assert.Empty(t, back.Note)
}
