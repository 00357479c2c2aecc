package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock se carga luego por lotes.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Unit          string          `json:"unit" validate:"required,oneof=kg l unit"`
	CriticalStock decimal.Decimal `json:"critical_stock"`
	Department    string          `json:"department"`
	AverageWeight decimal.Decimal `json:"average_weight"`
}

// UpdateProductRequest entrada para actualizar un producto (sin cantidad: se maneja vía lotes).
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit          *string          `json:"unit"`
	CriticalStock *decimal.Decimal `json:"critical_stock"`
	Department    *string          `json:"department"`
	AverageWeight *decimal.Decimal `json:"average_weight"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	CriticalStock decimal.Decimal `json:"critical_stock"`
	BelowCritical bool            `json:"below_critical"`
	Department    string          `json:"department"`
	AverageWeight decimal.Decimal `json:"average_weight"`
	Lots          []LotResponse   `json:"lots,omitempty"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
