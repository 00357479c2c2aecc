package inventory

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

// AlertsUseCase detecta productos bajo stock crítico y lotes próximos a vencer.
type AlertsUseCase struct {
	productRepo repository.ProductRepository
	warningDays int
	urgentDays  int
	now         ports.Clock
}

// NewAlertsUseCase construye el caso de uso. Un lote entra en aviso cuando le quedan
// warningDays días o menos, y es urgente con urgentDays o menos.
func NewAlertsUseCase(productRepo repository.ProductRepository, warningDays, urgentDays int) *AlertsUseCase {
	if warningDays <= 0 {
		warningDays = 10
	}
	if urgentDays <= 0 || urgentDays > warningDays {
		urgentDays = min(5, warningDays)
	}
	return &AlertsUseCase{productRepo: productRepo, warningDays: warningDays, urgentDays: urgentDays, now: time.Now}
}

// WithClock reemplaza la fuente de hora (pruebas).
func (uc *AlertsUseCase) WithClock(c ports.Clock) *AlertsUseCase {
	uc.now = c
	return uc
}

// StockAlerts recorre todos los productos y arma las alertas. Los lotes vencidos con stock
// también se informan para que se den de baja.
func (uc *AlertsUseCase) StockAlerts(ctx context.Context) (*dto.StockAlertsResponse, error) {
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := &dto.StockAlertsResponse{
		BelowCritical: []dto.ProductAlertDTO{},
		Expiring:      []dto.LotAlertDTO{},
		GeneratedAt:   now,
	}
	for _, p := range products {
		if p.BelowCritical() {
			out.BelowCritical = append(out.BelowCritical, dto.ProductAlertDTO{
				ProductID:     p.ID,
				Name:          p.Name,
				Unit:          p.Unit.String(),
				Quantity:      p.Quantity,
				CriticalStock: p.CriticalStock,
			})
		}
		for _, l := range p.Lots {
			if !l.Active || !l.QuantityRemaining.IsPositive() || l.ExpiresAt == nil {
				continue
			}
			days := DaysUntil(now, *l.ExpiresAt)
			level := uc.level(days)
			if level == "" {
				continue
			}
			out.Expiring = append(out.Expiring, dto.LotAlertDTO{
				ProductID:         p.ID,
				ProductName:       p.Name,
				LotID:             l.ID,
				Code:              l.Code,
				Unit:              p.Unit.String(),
				QuantityRemaining: l.QuantityRemaining,
				ExpiresAt:         *l.ExpiresAt,
				DaysLeft:          days,
				Level:             level,
			})
		}
	}
	sort.SliceStable(out.Expiring, func(i, j int) bool {
		return out.Expiring[i].ExpiresAt.Before(out.Expiring[j].ExpiresAt)
	})
	return out, nil
}

func (uc *AlertsUseCase) level(days int) string {
	switch {
	case days < 0:
		return dto.AlertLevelExpired
	case days <= uc.urgentDays:
		return dto.AlertLevelUrgent
	case days <= uc.warningDays:
		return dto.AlertLevelWarning
	}
	return ""
}

// DaysUntil días que faltan hasta t, redondeando hacia arriba (vence mañana a cualquier hora = 1).
func DaysUntil(now, t time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}
