// Package analytics contiene los casos de uso de reportes de producción y el
// dashboard de la cocina.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const dashboardTopIngredients = 5 // número de insumos en el widget del dashboard

// DashboardUseCase genera el resumen de producción del mes en curso.
//
// Fuentes: ProductionRunRepository (corridas) y AlertsUseCase (stock crítico y vencimientos).
// Las agregaciones se hacen en memoria sobre las corridas del período.
type DashboardUseCase struct {
	runRepo repository.ProductionRunRepository
	alerts  *inventory.AlertsUseCase
	now     ports.Clock
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(runRepo repository.ProductionRunRepository, alerts *inventory.AlertsUseCase) *DashboardUseCase {
	return &DashboardUseCase{runRepo: runRepo, alerts: alerts, now: time.Now}
}

// WithClock reemplaza la fuente de hora (pruebas).
func (uc *DashboardUseCase) WithClock(c ports.Clock) *DashboardUseCase {
	uc.now = c
	return uc
}

// GetProduction construye el ProductionDashboardDTO.
//
// Tres consultas en paralelo:
//  1. corridas abiertas
//  2. corridas creadas desde el inicio del mes anterior (cubre las cerradas este mes)
//  3. alertas de stock
func (uc *DashboardUseCase) GetProduction(ctx context.Context) (*dto.ProductionDashboardDTO, error) {
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lookback := monthStart.AddDate(0, -1, 0)

	// ── Goroutines para paralelizar las consultas ──────────────────────────────
	type runsResult struct {
		runs []*entity.ProductionRun
		err  error
	}
	type alertsResult struct {
		alerts *dto.StockAlertsResponse
		err    error
	}

	openCh := make(chan runsResult, 1)
	monthCh := make(chan runsResult, 1)
	alertsCh := make(chan alertsResult, 1)

	go func() {
		runs, err := uc.runRepo.List(ctx, repository.RunFilter{Status: entity.RunStatusOpen})
		openCh <- runsResult{runs, err}
	}()
	go func() {
		runs, err := uc.runRepo.List(ctx, repository.RunFilter{From: &lookback})
		monthCh <- runsResult{runs, err}
	}()
	go func() {
		a, err := uc.alerts.StockAlerts(ctx)
		alertsCh <- alertsResult{a, err}
	}()

	open := <-openCh
	month := <-monthCh
	alerts := <-alertsCh

	if open.err != nil {
		return nil, fmt.Errorf("dashboard: corridas abiertas: %w", open.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: corridas del mes: %w", month.err)
	}
	if alerts.err != nil {
		return nil, fmt.Errorf("dashboard: alertas: %w", alerts.err)
	}

	// ── Agregar métricas del mes ───────────────────────────────────────────────
	out := &dto.ProductionDashboardDTO{
		OpenRuns:           len(open.runs),
		OutputThisMonth:    decimal.Zero,
		TopIngredients:     []dto.TopIngredientDTO{},
		BelowCriticalCount: len(alerts.alerts.BelowCritical),
		ExpiringLotsCount:  len(alerts.alerts.Expiring),
		DateLabel:          monthLabel(now),
	}
	var totalDuration int64
	byProduct := map[string]*dto.TopIngredientDTO{}
	for _, r := range month.runs {
		if r.EndedAt == nil || r.EndedAt.Before(monthStart) {
			continue
		}
		switch r.Status {
		case entity.RunStatusCancelled:
			out.CancelledThisMonth++
			continue
		case entity.RunStatusClosed:
		default:
			continue
		}
		out.ClosedThisMonth++
		out.OutputThisMonth = out.OutputThisMonth.Add(r.ActualOutput)
		totalDuration += r.DurationSeconds
		for _, c := range r.Consumed {
			agg, ok := byProduct[c.ProductID]
			if !ok {
				agg = &dto.TopIngredientDTO{
					ProductID:   c.ProductID,
					ProductName: c.ProductName,
					Unit:        c.Unit.String(),
					Quantity:    decimal.Zero,
				}
				byProduct[c.ProductID] = agg
			}
			agg.Quantity = entity.RoundQty(agg.Quantity.Add(c.Quantity))
			agg.Runs++
		}
	}
	if out.ClosedThisMonth > 0 {
		out.AvgDurationSeconds = totalDuration / int64(out.ClosedThisMonth)
	}
	out.OutputThisMonth = entity.RoundQty(out.OutputThisMonth)

	for _, agg := range byProduct {
		out.TopIngredients = append(out.TopIngredients, *agg)
	}
	sort.Slice(out.TopIngredients, func(i, j int) bool {
		a, b := out.TopIngredients[i], out.TopIngredients[j]
		if !a.Quantity.Equal(b.Quantity) {
			return a.Quantity.GreaterThan(b.Quantity)
		}
		return a.ProductName < b.ProductName
	})
	if len(out.TopIngredients) > dashboardTopIngredients {
		out.TopIngredients = out.TopIngredients[:dashboardTopIngredients]
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
