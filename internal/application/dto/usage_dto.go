package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordUsageRequest body para POST /api/usage-log. Used va en Unit (vacío = unidad del producto);
// Units son las piezas que salieron de ese uso.
type RecordUsageRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Used      decimal.Decimal `json:"used"`
	Unit      string          `json:"unit,omitempty"`
	Units     int             `json:"units"`
	Note      string          `json:"note,omitempty"`
}

// UsageRecordResponse salida de un registro de uso.
type UsageRecordResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Used        decimal.Decimal `json:"used"`
	Units       int             `json:"units"`
	Useful      decimal.Decimal `json:"useful"`
	Waste       decimal.Decimal `json:"waste"`
	MovementID  string          `json:"movement_id,omitempty"`
	Note        string          `json:"note,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// UsageLogResponse lista paginada de registros de uso.
type UsageLogResponse struct {
	Items []UsageRecordResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// UsageTotalDTO totales de un producto en un día.
type UsageTotalDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Used        decimal.Decimal `json:"used"`
	Waste       decimal.Decimal `json:"waste"`
}

// UsageDayDTO registros de un día (YYYY-MM-DD, UTC) con totales por producto.
type UsageDayDTO struct {
	Date    string                `json:"date"`
	Records []UsageRecordResponse `json:"records"`
	Totals  []UsageTotalDTO       `json:"totals"`
}

// UsageDailyResponse respuesta de GET /api/usage-log/daily, días más recientes primero.
type UsageDailyResponse struct {
	Days []UsageDayDTO `json:"days"`
}
