package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageRecord registro del uso diario de un insumo en cocina. Used, Useful y Waste van en la
// unidad del producto; Units son las piezas que salieron (porciones, unidades entregadas).
// Como los movimientos, solo se agrega.
type UsageRecord struct {
	ID          string
	ProductID   string
	ProductName string
	Unit        Unit
	Used        decimal.Decimal
	Units       int
	Useful      decimal.Decimal
	Waste       decimal.Decimal
	MovementID  string // movimiento USAGE que descontó el stock
	Note        string
	CreatedBy   string
	RecordedAt  time.Time
}
