package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus estado de una corrida de producción.
type RunStatus string

const (
	RunStatusOpen      RunStatus = "open"
	RunStatusClosed    RunStatus = "closed"
	RunStatusCancelled RunStatus = "cancelled"
)

// ProductionRun registra una ejecución de receta: lo requerido, lo consumido (con trazabilidad
// de lotes) y el resultado. closed y cancelled son estados terminales.
type ProductionRun struct {
	ID              string
	RecipeID        string
	RecipeName      string
	PlannedOutput   decimal.Decimal
	ActualOutput    decimal.Decimal
	Required        []RequiredIngredient
	Consumed        []ConsumedIngredient
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds int64
	Status          RunStatus
	CreatedBy       string
	FinalProductID  string
	FinalLotID      string
	CancelReason    string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RequiredIngredient requerimiento en la unidad base de la receta.
type RequiredIngredient struct {
	ProductID   string
	ProductName string
	Unit        Unit
	Quantity    decimal.Decimal
}

// ConsumedIngredient consumo acumulado de un producto, en la unidad del producto.
type ConsumedIngredient struct {
	ProductID         string
	ProductName       string
	Unit              Unit
	Quantity          decimal.Decimal
	ConversionSkipped bool // la unidad pedida no se pudo convertir y se tomó tal cual
	Lots              []ConsumedLot
}

// ConsumedLot traza literal de un lote descontado.
type ConsumedLot struct {
	LotID      string
	Code       string
	InvoiceRef string
	Quantity   decimal.Decimal
	ExpiresAt  *time.Time
}

// IsOpen indica si la corrida admite consumos o confirmación.
func (r *ProductionRun) IsOpen() bool { return r.Status == RunStatusOpen }

// HasConsumption indica si ya se descontó algún insumo. Entradas en cero no cuentan.
func (r *ProductionRun) HasConsumption() bool {
	for _, c := range r.Consumed {
		if c.Quantity.IsPositive() {
			return true
		}
	}
	return false
}

// MergeConsumption suma el consumo al ingrediente existente o lo agrega.
// Cantidades y lotes se acumulan, nunca se sobrescriben.
func (r *ProductionRun) MergeConsumption(c ConsumedIngredient) {
	for i := range r.Consumed {
		if r.Consumed[i].ProductID != c.ProductID {
			continue
		}
		existing := &r.Consumed[i]
		existing.Quantity = RoundQty(existing.Quantity.Add(c.Quantity))
		existing.Lots = append(existing.Lots, c.Lots...)
		existing.ConversionSkipped = existing.ConversionSkipped || c.ConversionSkipped
		return
	}
	c.Quantity = RoundQty(c.Quantity)
	r.Consumed = append(r.Consumed, c)
}

// Close cierra la corrida con la producción real y calcula la duración en segundos.
func (r *ProductionRun) Close(actualOutput decimal.Decimal, now time.Time) {
	ended := now
	r.ActualOutput = RoundQty(actualOutput)
	r.EndedAt = &ended
	r.DurationSeconds = int64(ended.Sub(r.StartedAt).Round(time.Second) / time.Second)
	r.Status = RunStatusClosed
	r.UpdatedAt = now
}

// Cancel abandona la corrida sin efectos de stock.
func (r *ProductionRun) Cancel(reason string, now time.Time) {
	ended := now
	r.EndedAt = &ended
	r.DurationSeconds = int64(ended.Sub(r.StartedAt).Round(time.Second) / time.Second)
	r.Status = RunStatusCancelled
	r.CancelReason = reason
	r.UpdatedAt = now
}

// Clone devuelve una copia profunda de la corrida.
func (r *ProductionRun) Clone() *ProductionRun {
	if r == nil {
		return nil
	}
	c := *r
	c.Required = append([]RequiredIngredient(nil), r.Required...)
	c.Consumed = make([]ConsumedIngredient, len(r.Consumed))
	for i, ci := range r.Consumed {
		ci.Lots = append([]ConsumedLot(nil), ci.Lots...)
		c.Consumed[i] = ci
	}
	if r.EndedAt != nil {
		e := *r.EndedAt
		c.EndedAt = &e
	}
	return &c
}
