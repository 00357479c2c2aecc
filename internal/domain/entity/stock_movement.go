package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro de stock.
type MovementType string

const (
	MovementTypeIngress    MovementType = "INGRESS"    // ingreso de lote
	MovementTypeProduction MovementType = "PRODUCTION" // consumo (negativo) o salida de producción (positivo)
	MovementTypeAdjustment MovementType = "ADJUSTMENT" // corrección o baja de lote
	MovementTypeUsage      MovementType = "USAGE"      // uso diario registrado por cocina
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIngress, MovementTypeProduction, MovementTypeAdjustment, MovementTypeUsage:
		return true
	}
	return false
}

// StockMovement registro inmutable de una variación de stock. Solo se agrega, nunca se modifica.
type StockMovement struct {
	ID        string
	Type      MovementType
	ProductID string
	Delta     decimal.Decimal // negativo = consumo
	Unit      Unit
	Reference MovementReference
	Note      string
	CreatedBy string
	Timestamp time.Time
}

// MovementReference referencias de auditoría (opcionales).
type MovementReference struct {
	ProductionRunID string
	RecipeID        string
	LotID           string
}
