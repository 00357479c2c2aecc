package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/rs/zerolog"
)

// LedgerHandler consulta del libro de movimientos.
type LedgerHandler struct {
	uc  *inventory.LedgerUseCase
	log zerolog.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *inventory.LedgerUseCase, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Movimientos de stock
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        product_id         query  string  false  "Producto"
// @Param        production_run_id  query  string  false  "Corrida"
// @Param        type               query  string  false  "INGRESS | PRODUCTION | ADJUSTMENT | USAGE"
// @Param        limit              query  int     false  "Límite"  default(20)
// @Param        offset             query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), inventory.MovementQuery{
		ProductID:       c.Query("product_id"),
		ProductionRunID: c.Query("production_run_id"),
		Type:            c.Query("type"),
		PageRequest:     pageFrom(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
