package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/rs/zerolog"
)

// UsageHandler registro diario de uso y desperdicio.
type UsageHandler struct {
	uc  *inventory.UsageUseCase
	log zerolog.Logger
}

// NewUsageHandler construye el handler.
func NewUsageHandler(uc *inventory.UsageUseCase, log zerolog.Logger) *UsageHandler {
	return &UsageHandler{uc: uc, log: log}
}

// Record godoc
// @Summary      Registrar uso diario de un insumo
// @Description  Descuenta lo usado por FEFO y calcula el desperdicio con el peso promedio del producto.
// @Tags         usage-log
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordUsageRequest  true  "Uso del día"
// @Success      201   {object}  dto.UsageRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/usage-log [post]
func (h *UsageHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordUsageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Record(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Registros de uso
// @Tags         usage-log
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        from        query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to          query  string  false  "Hasta, exclusivo"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.UsageLogResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/usage-log [get]
func (h *UsageHandler) List(c *fiber.Ctx) error {
	q, err := usageQueryFrom(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Daily godoc
// @Summary      Uso agrupado por día
// @Description  Sin from devuelve los últimos 30 días.
// @Tags         usage-log
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        from        query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to          query  string  false  "Hasta, exclusivo"
// @Success      200  {object}  dto.UsageDailyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/usage-log/daily [get]
func (h *UsageHandler) Daily(c *fiber.Ctx) error {
	q, err := usageQueryFrom(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Daily(c.UserContext(), q)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

func usageQueryFrom(c *fiber.Ctx) (inventory.UsageQuery, error) {
	q := inventory.UsageQuery{ProductID: c.Query("product_id"), PageRequest: pageFrom(c)}
	var err error
	if q.From, err = timeQuery(c, "from"); err != nil {
		return q, err
	}
	if q.To, err = timeQuery(c, "to"); err != nil {
		return q, err
	}
	return q, nil
}
