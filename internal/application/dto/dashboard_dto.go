package dto

import "github.com/shopspring/decimal"

// ProductionDashboardDTO respuesta de GET /api/dashboard/production.
// Las métricas mensuales cubren desde el día 1 del mes en curso hasta ahora.
type ProductionDashboardDTO struct {
	OpenRuns           int             `json:"open_runs"`
	ClosedThisMonth    int             `json:"closed_this_month"`
	CancelledThisMonth int             `json:"cancelled_this_month"`
	OutputThisMonth    decimal.Decimal `json:"output_this_month"`
	AvgDurationSeconds int64           `json:"avg_duration_sec"`

	// Insumos más consumidos del mes (mayor cantidad primero, por unidad de producto)
	TopIngredients []TopIngredientDTO `json:"top_ingredients"`

	BelowCriticalCount int `json:"below_critical_count"`
	ExpiringLotsCount  int `json:"expiring_lots_count"`

	DateLabel string `json:"date_label"` // ej: "Octubre 2026"
}

// TopIngredientDTO consumo agregado de un insumo.
type TopIngredientDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Runs        int             `json:"runs"`
}
