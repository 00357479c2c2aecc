package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/application/production"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/rs/zerolog"
)

// ProductionHandler ciclo de vida de las corridas.
type ProductionHandler struct {
	uc    *production.UseCase
	sheet *production.SheetUseCase
	log   zerolog.Logger
}

// NewProductionHandler construye el handler.
func NewProductionHandler(uc *production.UseCase, sheet *production.SheetUseCase, log zerolog.Logger) *ProductionHandler {
	return &ProductionHandler{uc: uc, sheet: sheet, log: log}
}

// Plan godoc
// @Summary      Vista previa de una corrida (requerido vs disponible)
// @Tags         production-runs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PlanRunRequest  true  "Receta y cantidad"
// @Success      200   {object}  dto.PlanRunResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/production-runs/plan [post]
func (h *ProductionHandler) Plan(c *fiber.Ctx) error {
	var in dto.PlanRunRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Plan(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Start godoc
// @Summary      Iniciar corrida
// @Tags         production-runs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartRunRequest  true  "Receta y cantidad planificada"
// @Success      201   {object}  dto.RunResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/production-runs/start [post]
func (h *ProductionHandler) Start(c *fiber.Ctx) error {
	var in dto.StartRunRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.CreatedBy == "" {
		in.CreatedBy = GetUserID(c)
	}
	out, err := h.uc.Start(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Consume godoc
// @Summary      Descontar insumos (FEFO) de una corrida abierta
// @Tags         production-runs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la corrida"
// @Param        body  body  dto.ConsumeRunRequest  true  "Insumos"
// @Success      200   {object}  dto.RunResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/production-runs/{id}/consume [post]
func (h *ProductionHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRunRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Consume(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Confirm godoc
// @Summary      Confirmar corrida
// @Description  Sin consumos previos descuenta lo requerido; con consumos solo cierra.
// @Tags         production-runs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la corrida"
// @Param        body  body  dto.ConfirmRunRequest  true  "Producción real"
// @Success      200   {object}  dto.RunResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/production-runs/{id}/confirm [post]
func (h *ProductionHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmRunRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Confirm(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar corrida abierta
// @Tags         production-runs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la corrida"
// @Param        body  body  dto.CancelRunRequest  false "Motivo"
// @Success      200   {object}  dto.RunResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production-runs/{id}/cancel [post]
func (h *ProductionHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Cancel(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener corrida
// @Tags         production-runs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la corrida"
// @Success      200  {object}  dto.RunResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production-runs/{id} [get]
func (h *ProductionHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar corridas (más recientes primero)
// @Tags         production-runs
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "open | closed | cancelled"
// @Param        recipe_id  query  string  false  "Receta"
// @Param        from       query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta, exclusivo"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.RunListResponse
// @Router       /api/production-runs [get]
func (h *ProductionHandler) List(c *fiber.Ctx) error {
	in, err := runFilterFrom(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar corridas a CSV
// @Tags         production-runs
// @Security     Bearer
// @Produce      text/csv
// @Param        status     query  string  false  "open | closed | cancelled"
// @Param        from       query  string  false  "Desde"
// @Param        to         query  string  false  "Hasta"
// @Success      200  {file}  file
// @Router       /api/production-runs/export [get]
func (h *ProductionHandler) Export(c *fiber.Ctx) error {
	in, err := runFilterFrom(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	// sin limit explícito se exportan todas
	if c.Query("limit") == "" {
		in.Limit, in.Offset = 0, 0
	}
	data, err := h.uc.ExportCSV(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="production_runs.csv"`)
	return c.Send(data)
}

// Sheet godoc
// @Summary      Planilla PDF de la corrida
// @Tags         production-runs
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la corrida"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production-runs/{id}/sheet [get]
func (h *ProductionHandler) Sheet(c *fiber.Ctx) error {
	data, filename, err := h.sheet.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

func runFilterFrom(c *fiber.Ctx) (dto.RunFilterRequest, error) {
	in := dto.RunFilterRequest{
		Status:      c.Query("status"),
		RecipeID:    c.Query("recipe_id"),
		PageRequest: pageFrom(c),
	}
	var err error
	if in.From, err = timeQuery(c, "from"); err != nil {
		return in, err
	}
	if in.To, err = timeQuery(c, "to"); err != nil {
		return in, err
	}
	return in, nil
}

// timeQuery acepta RFC3339 o solo la fecha (medianoche UTC).
func timeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s no es una fecha válida", domain.ErrInvalidInput, key)
}
