package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanRunRequest body para POST /api/production-runs/plan.
type PlanRunRequest struct {
	RecipeID      string          `json:"recipe_id" validate:"required"`
	PlannedOutput decimal.Decimal `json:"planned_output"`
}

// PlanIngredientDTO requerimiento de un insumo frente al stock disponible.
type PlanIngredientDTO struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	RecipeUnit        string          `json:"recipe_unit"`
	Required          decimal.Decimal `json:"required"`
	ProductUnit       string          `json:"product_unit"`
	RequiredInStock   decimal.Decimal `json:"required_in_stock_unit"`
	Available         decimal.Decimal `json:"available"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	Sufficient        bool            `json:"sufficient"`
	ConversionSkipped bool            `json:"conversion_skipped,omitempty"`
}

// PlanRunResponse vista previa de una corrida; no modifica nada.
type PlanRunResponse struct {
	RecipeID      string              `json:"recipe_id"`
	RecipeName    string              `json:"recipe_name"`
	PlannedOutput decimal.Decimal     `json:"planned_output"`
	Ingredients   []PlanIngredientDTO `json:"ingredients"`
	Feasible      bool                `json:"feasible"`
}

// StartRunRequest body para POST /api/production-runs/start.
type StartRunRequest struct {
	RecipeID      string          `json:"recipe_id" validate:"required"`
	PlannedOutput decimal.Decimal `json:"planned_output"`
	CreatedBy     string          `json:"created_by"`
}

// ConsumeItemRequest insumo a descontar, en la unidad indicada (g|kg|ml|l|unit).
type ConsumeItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

// ConsumeRunRequest body para POST /api/production-runs/:id/consume.
type ConsumeRunRequest struct {
	Items []ConsumeItemRequest `json:"items" validate:"required,min=1"`
}

// ConfirmRunRequest body para POST /api/production-runs/:id/confirm.
type ConfirmRunRequest struct {
	ActualOutput   decimal.Decimal `json:"actual_output"`
	FinalProductID string          `json:"final_product_id,omitempty"`
	FinalExpiry    *time.Time      `json:"final_expiry,omitempty"`
}

// CancelRunRequest body para POST /api/production-runs/:id/cancel.
type CancelRunRequest struct {
	Reason string `json:"reason"`
}

// RequiredIngredientDTO requerimiento congelado al iniciar la corrida.
type RequiredIngredientDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ConsumedLotDTO traza de un lote descontado.
type ConsumedLotDTO struct {
	LotID      string          `json:"lot_id"`
	Code       string          `json:"code"`
	InvoiceRef string          `json:"invoice_ref"`
	Quantity   decimal.Decimal `json:"quantity"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
}

// ConsumedIngredientDTO consumo acumulado de un insumo, en la unidad del producto.
type ConsumedIngredientDTO struct {
	ProductID         string           `json:"product_id"`
	ProductName       string           `json:"product_name"`
	Unit              string           `json:"unit"`
	Quantity          decimal.Decimal  `json:"quantity"`
	ConversionSkipped bool             `json:"conversion_skipped,omitempty"`
	Lots              []ConsumedLotDTO `json:"lots"`
}

// RunResponse salida de una corrida de producción.
type RunResponse struct {
	ID              string                  `json:"id"`
	RecipeID        string                  `json:"recipe_id"`
	RecipeName      string                  `json:"recipe_name"`
	PlannedOutput   decimal.Decimal         `json:"planned_output"`
	ActualOutput    decimal.Decimal         `json:"actual_output"`
	Required        []RequiredIngredientDTO `json:"required"`
	Consumed        []ConsumedIngredientDTO `json:"consumed"`
	StartedAt       time.Time               `json:"started_at"`
	EndedAt         *time.Time              `json:"ended_at,omitempty"`
	DurationSeconds int64                   `json:"duration_sec"`
	Status          string                  `json:"status"`
	CreatedBy       string                  `json:"created_by"`
	FinalProductID  string                  `json:"final_product_id,omitempty"`
	FinalLotID      string                  `json:"final_lot_id,omitempty"`
	CancelReason    string                  `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// RunListResponse lista paginada de corridas (más recientes primero).
type RunListResponse struct {
	Items []RunResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// RunFilterRequest filtros de GET /api/production-runs y del export CSV.
type RunFilterRequest struct {
	Status   string     `query:"status"`
	RecipeID string     `query:"recipe_id"`
	From     *time.Time `query:"-"`
	To       *time.Time `query:"-"`
	PageRequest
}
