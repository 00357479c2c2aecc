package inventory

import (
	"sort"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Allocation resultado de una asignación FEFO.
type Allocation struct {
	Used      []entity.ConsumedLot // lotes descontados, en el orden en que se tomaron
	Shortfall decimal.Decimal      // cantidad no cubierta (>= 0)
	Lots      []entity.Lot         // copia de los lotes con los remanentes actualizados, en el orden recibido
	NewTotal  decimal.Decimal      // suma de remanentes de los lotes activos
}

// Consumed cantidad efectivamente descontada.
func (a Allocation) Consumed() decimal.Decimal {
	total := decimal.Zero
	for _, u := range a.Used {
		total = total.Add(u.Quantity)
	}
	return entity.RoundQty(total)
}

// AllocateFEFO descuenta requested de los lotes, primero los que vencen antes.
// Los lotes sin vencimiento van al final; a igual vencimiento se respeta la fecha de ingreso.
// Los lotes inactivos no se tocan. La función no falla: el faltante se informa en Shortfall
// y el llamador decide si es fatal. No modifica el slice recibido.
func AllocateFEFO(lots []entity.Lot, requested decimal.Decimal) Allocation {
	work := make([]entity.Lot, len(lots))
	for i, l := range lots {
		work[i] = l.Clone()
	}

	order := make([]int, len(work))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return expiresBefore(work[order[a]], work[order[b]])
	})

	remaining := entity.RoundQty(requested)
	var used []entity.ConsumedLot
	for _, idx := range order {
		if !remaining.IsPositive() {
			break
		}
		l := &work[idx]
		if !l.Active || !l.QuantityRemaining.IsPositive() {
			continue
		}
		take := decimal.Min(l.QuantityRemaining, remaining)
		l.QuantityRemaining = entity.RoundQty(l.QuantityRemaining.Sub(take))
		remaining = entity.RoundQty(remaining.Sub(take))
		used = append(used, entity.ConsumedLot{
			LotID:      l.ID,
			Code:       l.Code,
			InvoiceRef: l.InvoiceRef,
			Quantity:   entity.RoundQty(take),
			ExpiresAt:  l.Clone().ExpiresAt,
		})
	}
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	total := decimal.Zero
	for _, l := range work {
		if l.Active {
			total = total.Add(l.QuantityRemaining)
		}
	}

	return Allocation{
		Used:      used,
		Shortfall: remaining,
		Lots:      work,
		NewTotal:  entity.RoundQty(total),
	}
}

// AvailableQuantity suma los remanentes de los lotes activos.
func AvailableQuantity(lots []entity.Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		if l.Active {
			total = total.Add(l.QuantityRemaining)
		}
	}
	return entity.RoundQty(total)
}

func expiresBefore(a, b entity.Lot) bool {
	switch {
	case a.ExpiresAt == nil && b.ExpiresAt == nil:
		return a.ReceivedAt.Before(b.ReceivedAt)
	case a.ExpiresAt == nil:
		return false
	case b.ExpiresAt == nil:
		return true
	case a.ExpiresAt.Equal(*b.ExpiresAt):
		return a.ReceivedAt.Before(b.ReceivedAt)
	}
	return a.ExpiresAt.Before(*b.ExpiresAt)
}
