package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un insumo o producto terminado de la cocina.
// Quantity es derivado: siempre igual a la suma de QuantityRemaining de los lotes activos.
type Product struct {
	ID            string
	Name          string
	Unit          Unit // kg | l | unit
	Quantity      decimal.Decimal
	CriticalStock decimal.Decimal // umbral de stock crítico (0 = sin alerta)
	Department    string
	AverageWeight decimal.Decimal
	Lots          []Lot
	Version       int64 // control de concurrencia optimista
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Lot representa un lote fechado y asociado a una factura/remito del proveedor.
// Nunca se borra físicamente: un lote agotado o desactivado queda como historial.
type Lot struct {
	ID                string
	ProductID         string
	Code              string // único dentro del producto
	InvoiceRef        string
	QuantityReceived  decimal.Decimal
	QuantityRemaining decimal.Decimal
	ExpiresAt         *time.Time // nil = sin vencimiento
	ReceivedAt        time.Time
	Active            bool
	UpdatedAt         time.Time
}

// RecomputeQuantity recalcula Quantity desde los lotes activos.
func (p *Product) RecomputeQuantity() {
	total := decimal.Zero
	for _, l := range p.Lots {
		if l.Active {
			total = total.Add(l.QuantityRemaining)
		}
	}
	p.Quantity = RoundQty(total)
}

// Touch marca la modificación del producto. Las operaciones que mutan lo llaman de forma explícita.
func (p *Product) Touch(now time.Time) {
	p.UpdatedAt = now
}

// LotIndex devuelve la posición del lote con el ID dado o -1.
func (p *Product) LotIndex(lotID string) int {
	for i := range p.Lots {
		if p.Lots[i].ID == lotID {
			return i
		}
	}
	return -1
}

// HasLotCode indica si ya existe un lote (activo o no) con ese código.
func (p *Product) HasLotCode(code string) bool {
	for i := range p.Lots {
		if p.Lots[i].Code == code {
			return true
		}
	}
	return false
}

// HasActiveStock indica si algún lote activo conserva cantidad.
func (p *Product) HasActiveStock() bool {
	for _, l := range p.Lots {
		if l.Active && l.QuantityRemaining.IsPositive() {
			return true
		}
	}
	return false
}

// BelowCritical indica si el producto está por debajo de su stock crítico.
func (p *Product) BelowCritical() bool {
	return p.CriticalStock.IsPositive() && p.Quantity.LessThan(p.CriticalStock)
}

// Clone devuelve una copia profunda (lotes y fechas incluidos).
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Lots = make([]Lot, len(p.Lots))
	for i, l := range p.Lots {
		c.Lots[i] = l.Clone()
	}
	return &c
}

// Clone devuelve una copia del lote sin compartir el puntero de vencimiento.
func (l Lot) Clone() Lot {
	if l.ExpiresAt != nil {
		exp := *l.ExpiresAt
		l.ExpiresAt = &exp
	}
	return l
}
