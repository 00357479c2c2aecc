package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *entity.ProductionRun {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	exp := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	return &entity.ProductionRun{
		ID:            "6f1c2d3e-0000-4000-8000-00a789abcdef",
		RecipeID:      "r1",
		RecipeName:    "Pan de campo",
		PlannedOutput: decimal.NewFromInt(50),
		ActualOutput:  decimal.NewFromInt(48),
		Required: []entity.RequiredIngredient{
			{ProductID: "p1", ProductName: "Harina", Unit: entity.UnitGram, Quantity: decimal.NewFromInt(10000)},
		},
		Consumed: []entity.ConsumedIngredient{{
			ProductID: "p1", ProductName: "Harina", Unit: entity.UnitKilogram, Quantity: decimal.NewFromInt(10),
			Lots: []entity.ConsumedLot{{LotID: "l1", Code: "F-001", InvoiceRef: "REM-7", Quantity: decimal.NewFromInt(10), ExpiresAt: &exp}},
		}},
		StartedAt:       start,
		EndedAt:         &end,
		DurationSeconds: 5400,
		Status:          entity.RunStatusClosed,
		CreatedBy:       "ana",
	}
}

func TestGenerateRunSheet_Cerrada(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("Cocina Central")
	recipe := &entity.Recipe{ID: "r1", Name: "Pan de campo", YieldPerBatch: decimal.NewFromInt(25)}

	out, err := g.GenerateRunSheet(context.Background(), sampleRun(), recipe)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateRunSheet_SinRecetaNiConsumos(t *testing.T) {
	run := sampleRun()
	run.Consumed = nil
	run.EndedAt = nil
	run.Status = entity.RunStatusOpen

	out, err := pdf.NewMarotoPDFGenerator("").GenerateRunSheet(context.Background(), run, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
