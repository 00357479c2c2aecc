// Package scheduler corre tareas periódicas de la cocina (revisión diaria de alertas).
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// AlertsSource lo que el job necesita del caso de uso de alertas.
type AlertsSource interface {
	StockAlerts(ctx context.Context) (*dto.StockAlertsResponse, error)
}

// Scheduler envuelve un cron estándar de 5 campos.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	alerts AlertsSource
	log    zerolog.Logger
}

// New crea el scheduler; spec es la expresión cron de la revisión de alertas.
func New(spec string, alerts AlertsSource, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		spec:   spec,
		alerts: alerts,
		log:    log,
	}
}

// Start registra el job y arranca el cron. Una expresión inválida no arranca nada.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("programar alertas %q: %w", s.spec, err)
	}
	s.log.Info().Str("cron", s.spec).Msg("scheduler iniciado")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que termine el job en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler detenido")
}

// RunOnce calcula las alertas y las deja en el log: un aviso por lote y por producto bajo crítico.
func (s *Scheduler) RunOnce(ctx context.Context) {
	res, err := s.alerts.StockAlerts(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("no se pudieron calcular las alertas")
		return
	}
	for _, p := range res.BelowCritical {
		s.log.Warn().
			Str("product_id", p.ProductID).
			Str("product", p.Name).
			Str("quantity", p.Quantity.String()).
			Str("critical", p.CriticalStock.String()).
			Msg("producto bajo stock crítico")
	}
	for _, l := range res.Expiring {
		s.log.Warn().
			Str("product", l.ProductName).
			Str("lot", l.Code).
			Str("level", l.Level).
			Int("days_left", l.DaysLeft).
			Msg("lote por vencer")
	}
	s.log.Info().
		Int("below_critical", len(res.BelowCritical)).
		Int("expiring", len(res.Expiring)).
		Msg("revisión de alertas completa")
}
