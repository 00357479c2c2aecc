package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddLotRequest body para POST /api/lots. Si Code viene vacío se genera uno.
type AddLotRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	Code       string          `json:"code"`
	InvoiceRef string          `json:"invoice_ref"`
	Quantity   decimal.Decimal `json:"quantity"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// CorrectLotRequest body para PUT /api/lots/:id. Solo se aplican los campos presentes.
type CorrectLotRequest struct {
	QuantityRemaining *decimal.Decimal `json:"quantity_remaining,omitempty"`
	ExpiresAt         *time.Time       `json:"expires_at,omitempty"`
	ClearExpiry       bool             `json:"clear_expiry,omitempty"`
	InvoiceRef        *string          `json:"invoice_ref,omitempty"`
	Note              string           `json:"note,omitempty"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Code              string          `json:"code"`
	InvoiceRef        string          `json:"invoice_ref"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	ReceivedAt        time.Time       `json:"received_at"`
	Active            bool            `json:"active"`
}

// StockMovementResponse salida de un movimiento del libro.
type StockMovementResponse struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	ProductID       string          `json:"product_id"`
	Delta           decimal.Decimal `json:"delta"`
	Unit            string          `json:"unit"`
	ProductionRunID string          `json:"production_run_id,omitempty"`
	RecipeID        string          `json:"recipe_id,omitempty"`
	LotID           string          `json:"lot_id,omitempty"`
	Note            string          `json:"note,omitempty"`
	CreatedBy       string          `json:"created_by,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// Niveles de alerta de vencimiento.
const (
	AlertLevelExpired = "expired"
	AlertLevelUrgent  = "urgent"
	AlertLevelWarning = "warning"
)

// ProductAlertDTO producto por debajo de su stock crítico.
type ProductAlertDTO struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	CriticalStock decimal.Decimal `json:"critical_stock"`
}

// LotAlertDTO lote activo con stock que vence dentro de la ventana de aviso.
type LotAlertDTO struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	LotID             string          `json:"lot_id"`
	Code              string          `json:"code"`
	Unit              string          `json:"unit"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	ExpiresAt         time.Time       `json:"expires_at"`
	DaysLeft          int             `json:"days_left"`
	Level             string          `json:"level"` // expired | urgent | warning
}

// StockAlertsResponse respuesta de GET /api/products/alerts.
type StockAlertsResponse struct {
	BelowCritical []ProductAlertDTO `json:"below_critical"`
	Expiring      []LotAlertDTO     `json:"expiring"`
	GeneratedAt   time.Time         `json:"generated_at"`
}
