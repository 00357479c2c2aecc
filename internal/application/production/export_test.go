package production_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/production"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRunsCSV(t *testing.T) {
	ended := time.Date(2025, 1, 5, 9, 30, 0, 0, time.UTC)
	runs := []*entity.ProductionRun{
		{
			RecipeName:      `Pan "de campo", grande`,
			PlannedOutput:   decimal.NewFromInt(50),
			ActualOutput:    decimal.RequireFromString("48.5"),
			CreatedAt:       time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC),
			StartedAt:       time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC),
			EndedAt:         &ended,
			DurationSeconds: 5400,
		},
		{
			RecipeName: "Medialunas",
			CreatedAt:  time.Date(2025, 1, 4, 7, 0, 0, 0, time.FixedZone("ART", -3*3600)),
			StartedAt:  time.Date(2025, 1, 4, 7, 0, 0, 0, time.FixedZone("ART", -3*3600)),
		},
	}

	lines := strings.Split(string(production.EncodeRunsCSV(runs)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "createdAt,recipeName,plannedOutput,actualOutput,startedAt,endedAt,durationSec", lines[0])
	assert.Equal(t, `2025-01-05T08:00:00.000Z,"Pan ""de campo"", grande",50,48.5,2025-01-05T08:00:00.000Z,2025-01-05T09:30:00.000Z,5400`, lines[1])
	assert.Equal(t, `2025-01-04T10:00:00.000Z,"Medialunas",0,0,2025-01-04T10:00:00.000Z,,0`, lines[2])
}

func TestEncodeRunsCSV_SinCorridas(t *testing.T) {
	assert.Equal(t, production.ExportHeader, string(production.EncodeRunsCSV(nil)))
}

func TestRunSuffix(t *testing.T) {
	assert.Equal(t, "89ABCDEF", production.RunSuffix("6f1c2d3e-0000-4000-8000-00a789abcdef"))
	assert.Equal(t, "ABC", production.RunSuffix("abc"))
}
