package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/Cocina-api/internal/application/analytics"
	"github.com/rs/zerolog"
)

// DashboardHandler maneja los endpoints del tablero de producción.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log zerolog.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetProduction devuelve el resumen de producción del mes en curso.
// GET /api/dashboard/production
//
// Respuesta: ProductionDashboardDTO (open_runs, closed_this_month, output_this_month,
// top_ingredients, below_critical_count, expiring_lots_count, date_label).
// Las fechas se calculan en el servidor.
func (h *DashboardHandler) GetProduction(c *fiber.Ctx) error {
	summary, err := h.uc.GetProduction(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(summary)
}
