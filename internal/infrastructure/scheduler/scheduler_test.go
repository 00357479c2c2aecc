package scheduler_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/scheduler"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlerts struct {
	res *dto.StockAlertsResponse
	err error
}

func (f fakeAlerts) StockAlerts(context.Context) (*dto.StockAlertsResponse, error) {
	return f.res, f.err
}

func TestRunOnce_RegistraAlertas(t *testing.T) {
	var buf bytes.Buffer
	res := &dto.StockAlertsResponse{
		BelowCritical: []dto.ProductAlertDTO{{ProductID: "p1", Name: "Leche", Quantity: decimal.NewFromInt(1), CriticalStock: decimal.NewFromInt(5)}},
		Expiring:      []dto.LotAlertDTO{{ProductName: "Crema", Code: "L-1", Level: dto.AlertLevelUrgent, DaysLeft: 2}},
	}
	s := scheduler.New("0 6 * * *", fakeAlerts{res: res}, zerolog.New(&buf))

	s.RunOnce(context.Background())

	out := buf.String()
	assert.Contains(t, out, `"product":"Leche"`)
	assert.Contains(t, out, `"lot":"L-1"`)
	assert.Contains(t, out, `"days_left":2`)
	assert.Contains(t, out, `"expiring":1`)
}

func TestRunOnce_ErrorSeRegistra(t *testing.T) {
	var buf bytes.Buffer
	s := scheduler.New("0 6 * * *", fakeAlerts{err: errors.New("db caída")}, zerolog.New(&buf))

	s.RunOnce(context.Background())

	assert.True(t, strings.Contains(buf.String(), "db caída"))
	assert.NotContains(t, buf.String(), "revisión de alertas completa")
}

func TestStart_ExpresionInvalida(t *testing.T) {
	s := scheduler.New("cada rato", fakeAlerts{res: &dto.StockAlertsResponse{}}, zerolog.Nop())
	require.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := scheduler.New("0 6 * * *", fakeAlerts{res: &dto.StockAlertsResponse{}}, zerolog.Nop())
	require.NoError(t, s.Start())
	s.Stop()
}
