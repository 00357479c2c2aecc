package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cocina-api/internal/application/analytics"
	"github.com/jhoicas/Cocina-api/internal/application/inventory"
	"github.com/jhoicas/Cocina-api/internal/application/production"
	"github.com/jhoicas/Cocina-api/internal/application/usecase"
	domaininv "github.com/jhoicas/Cocina-api/internal/domain/inventory"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cocina-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/Cocina-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Cocina-api/pkg/jwt"
)

type server struct {
	t   *testing.T
	app *fiber.App
}

func newServer(t *testing.T) *server {
	t.Helper()
	b := storage.NewMemory()
	log := zerolog.Nop()
	alerts := inventory.NewAlertsUseCase(b.Products, 10, 5)
	runUC := production.NewUseCase(b.Tx, b.Recipes, b.Products, b.Runs, domaininv.PassthroughOnUnknownUnit, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(b.Products, b.Recipes),
		RecipeUC:    usecase.NewRecipeUseCase(b.Recipes, b.Products),
		LotUC:       inventory.NewLotUseCase(b.Tx, b.Products),
		AlertsUC:    alerts,
		LedgerUC:    inventory.NewLedgerUseCase(b.Movements),
		UsageUC:     inventory.NewUsageUseCase(b.UsageTx, b.Usage, domaininv.PassthroughOnUnknownUnit, log),
		RunUC:       runUC,
		SheetUC:     production.NewSheetUseCase(b.Runs, b.Recipes, pdf.NewMarotoPDFGenerator("Cocina Central")),
		DashboardUC: analytics.NewDashboardUseCase(b.Runs, alerts),
		JWTSecret:   testJWTSecret,
		StoreDriver: b.Driver,
		Log:         log,
	})
	return &server{t: t, app: app}
}

// do lanza la petición con el rol dado ("" = sin token) y devuelve status y cuerpo.
func (s *server) do(method, path, role string, body any) (int, []byte) {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(s.t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp.StatusCode, out
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

// seed crea Harina (10 kg en un lote) y la receta Pan con 200 g por unidad.
func (s *server) seed() (productID, recipeID string) {
	s.t.Helper()
	status, raw := s.do(http.MethodPost, "/api/products", pkgjwt.RoleAdmin, map[string]any{
		"name": "Harina", "unit": "kg", "critical_stock": "2",
	})
	require.Equal(s.t, http.StatusCreated, status, string(raw))
	productID = decode(s.t, raw)["id"].(string)

	exp := time.Now().AddDate(0, 1, 0).UTC().Format(time.RFC3339)
	status, raw = s.do(http.MethodPost, "/api/lots", pkgjwt.RoleProveedor, map[string]any{
		"product_id": productID, "code": "F-001", "invoice_ref": "REM-10", "quantity": "10", "expires_at": exp,
	})
	require.Equal(s.t, http.StatusCreated, status, string(raw))

	status, raw = s.do(http.MethodPost, "/api/recipes", pkgjwt.RoleAdmin, map[string]any{
		"name": "Pan", "yield_per_batch": "1",
		"ingredients": []map[string]any{{"product_id": productID, "base_unit": "g", "quantity_per_unit": "200"}},
	})
	require.Equal(s.t, http.StatusCreated, status, string(raw))
	recipeID = decode(s.t, raw)["id"].(string)
	return productID, recipeID
}

func TestHealth_SinToken(t *testing.T) {
	s := newServer(t)
	status, raw := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "memory", decode(t, raw)["store"])
}

func TestCorrida_InicioYConfirmacion(t *testing.T) {
	s := newServer(t)
	productID, recipeID := s.seed()

	status, raw := s.do(http.MethodPost, "/api/production-runs/start", pkgjwt.RoleCocinero, map[string]any{
		"recipe_id": recipeID, "planned_output": "5",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	run := decode(t, raw)
	runID := run["id"].(string)
	assert.Equal(t, "open", run["status"])
	assert.Equal(t, testUserID, run["created_by"])

	status, raw = s.do(http.MethodPost, "/api/production-runs/"+runID+"/confirm", pkgjwt.RoleCocinero, map[string]any{
		"actual_output": "5",
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "closed", decode(t, raw)["status"])

	status, raw = s.do(http.MethodGet, "/api/products/"+productID, pkgjwt.RoleCocinero, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "9", decode(t, raw)["quantity"])

	// confirmar dos veces no vuelve a descontar
	status, raw = s.do(http.MethodPost, "/api/production-runs/"+runID+"/confirm", pkgjwt.RoleCocinero, map[string]any{
		"actual_output": "5",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "RUN_CLOSED", decode(t, raw)["code"])

	status, raw = s.do(http.MethodGet, "/api/stock-movements?product_id="+productID, pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode(t, raw)["items"], 2)

	status, raw = s.do(http.MethodGet, "/api/stock-movements?type=PRODUCTION&production_run_id="+runID, pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	items := decode(t, raw)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "-1", items[0].(map[string]any)["delta"])
}

func TestCorrida_StockInsuficiente(t *testing.T) {
	s := newServer(t)
	_, recipeID := s.seed()

	_, raw := s.do(http.MethodPost, "/api/production-runs/start", pkgjwt.RoleCocinero, map[string]any{
		"recipe_id": recipeID, "planned_output": "100",
	})
	runID := decode(t, raw)["id"].(string)

	status, raw := s.do(http.MethodPost, "/api/production-runs/"+runID+"/confirm", pkgjwt.RoleCocinero, map[string]any{
		"actual_output": "100",
	})
	assert.Equal(t, http.StatusConflict, status)
	body := decode(t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "Harina", details["product_name"])

	// la corrida sigue abierta
	status, raw = s.do(http.MethodGet, "/api/production-runs/"+runID, pkgjwt.RoleCocinero, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "open", decode(t, raw)["status"])
}

func TestCorrida_CancelarYPlanilla(t *testing.T) {
	s := newServer(t)
	_, recipeID := s.seed()

	_, raw := s.do(http.MethodPost, "/api/production-runs/start", pkgjwt.RoleAdmin, map[string]any{
		"recipe_id": recipeID, "planned_output": "2",
	})
	runID := decode(t, raw)["id"].(string)

	status, raw := s.do(http.MethodPost, "/api/production-runs/"+runID+"/cancel", pkgjwt.RoleAdmin, map[string]any{"reason": "corte de luz"})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, "cancelled", decode(t, raw)["status"])

	req := httptest.NewRequest(http.MethodGet, "/api/production-runs/"+runID+"/sheet", nil)
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleCocinero))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdfBytes, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF")))
}

func TestCorridas_ExportCSV(t *testing.T) {
	s := newServer(t)
	_, recipeID := s.seed()
	s.do(http.MethodPost, "/api/production-runs/start", pkgjwt.RoleCocinero, map[string]any{
		"recipe_id": recipeID, "planned_output": "3",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/production-runs/export", nil)
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleCocinero))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))

	raw, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "createdAt,recipeName,plannedOutput,actualOutput,startedAt,endedAt,durationSec", lines[0])
	assert.Contains(t, lines[1], `"Pan"`)
}

func TestCorridas_FiltroFechaInvalida(t *testing.T) {
	s := newServer(t)
	status, raw := s.do(http.MethodGet, "/api/production-runs?from=ayer", pkgjwt.RoleCocinero, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decode(t, raw)["code"])
}

func TestErrores_Mapeo(t *testing.T) {
	s := newServer(t)
	productID, _ := s.seed()

	status, raw := s.do(http.MethodGet, "/api/production-runs/no-existe", pkgjwt.RoleCocinero, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode(t, raw)["code"])

	status, raw = s.do(http.MethodPost, "/api/lots", pkgjwt.RoleAdmin, map[string]any{"product_id": productID, "quantity": "0"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decode(t, raw)["code"])

	status, raw = s.do(http.MethodPost, "/api/recipes", pkgjwt.RoleAdmin, map[string]any{
		"name": "PAN",
		"ingredients": []map[string]any{{"product_id": productID, "base_unit": "g", "quantity_per_unit": "1"}},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", decode(t, raw)["code"])

	// con historial de lotes el producto no se borra
	status, raw = s.do(http.MethodDelete, "/api/products/"+productID, pkgjwt.RoleAdmin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", decode(t, raw)["code"])
}

func TestRoles_PorRuta(t *testing.T) {
	s := newServer(t)

	status, _ := s.do(http.MethodPost, "/api/products", pkgjwt.RoleCocinero, map[string]any{"name": "Sal", "unit": "kg"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(http.MethodGet, "/api/production-runs", pkgjwt.RoleProveedor, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(http.MethodGet, "/api/products", pkgjwt.RoleProveedor, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAlertasYTablero(t *testing.T) {
	s := newServer(t)
	productID, _ := s.seed()

	// baja a 1 kg: queda bajo el crítico de 2
	status, raw := s.do(http.MethodGet, "/api/products/"+productID+"/lots", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	var lots []map[string]any
	require.NoError(t, json.Unmarshal(raw, &lots))
	require.Len(t, lots, 1)
	status, raw = s.do(http.MethodPut, "/api/lots/"+lots[0]["id"].(string), pkgjwt.RoleAdmin, map[string]any{"quantity_remaining": "1"})
	require.Equal(t, http.StatusOK, status, string(raw))

	status, raw = s.do(http.MethodGet, "/api/products/alerts", pkgjwt.RoleCocinero, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode(t, raw)["below_critical"], 1)

	status, raw = s.do(http.MethodGet, "/api/dashboard/production", pkgjwt.RoleCocinero, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, decode(t, raw)["below_critical_count"])
}

func TestUsoDiario_RegistroYResumen(t *testing.T) {
	s := newServer(t)
	status, raw := s.do(http.MethodPost, "/api/products", pkgjwt.RoleAdmin, map[string]any{
		"name": "Papa", "unit": "kg", "average_weight": "120",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	productID := decode(t, raw)["id"].(string)
	status, raw = s.do(http.MethodPost, "/api/lots", pkgjwt.RoleProveedor, map[string]any{
		"product_id": productID, "code": "P-1", "quantity": "5",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))

	status, raw = s.do(http.MethodPost, "/api/usage-log", pkgjwt.RoleCocinero, map[string]any{
		"product_id": productID, "used": "3", "units": 20,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	rec := decode(t, raw)
	assert.Equal(t, "0.6", rec["waste"])
	assert.Equal(t, "2.4", rec["useful"])
	assert.Equal(t, testUserID, rec["created_by"])

	status, raw = s.do(http.MethodGet, "/api/products/"+productID, pkgjwt.RoleCocinero, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2", decode(t, raw)["quantity"])

	status, raw = s.do(http.MethodGet, "/api/stock-movements?type=USAGE", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Len(t, decode(t, raw)["items"], 1)

	status, raw = s.do(http.MethodGet, "/api/usage-log/daily", pkgjwt.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Len(t, decode(t, raw)["days"], 1)

	status, raw = s.do(http.MethodGet, "/api/usage-log?product_id="+productID, pkgjwt.RoleCocinero, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Len(t, decode(t, raw)["items"], 1)

	status, raw = s.do(http.MethodPost, "/api/usage-log", pkgjwt.RoleCocinero, map[string]any{
		"product_id": productID, "used": "10", "units": 1,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode(t, raw)["code"])

	status, _ = s.do(http.MethodPost, "/api/usage-log", pkgjwt.RoleProveedor, map[string]any{
		"product_id": productID, "used": "1",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = s.do(http.MethodGet, "/api/usage-log?from=ayer", pkgjwt.RoleCocinero, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decode(t, raw)["code"])
}
