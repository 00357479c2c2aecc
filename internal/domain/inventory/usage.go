package inventory

import (
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// UsageWaste separa lo usado en parte aprovechable y desperdicio.
// En productos por peso o volumen averageWeight es el promedio por pieza en g o ml,
// así que lo útil es units × averageWeight / 1000. En productos por unidad cada pieza
// cuenta entera. Sin peso promedio no hay base para estimar: todo se toma como útil.
// Lo útil nunca supera lo usado y el desperdicio nunca es negativo.
func UsageWaste(used decimal.Decimal, units int, averageWeight decimal.Decimal, unit entity.Unit) (useful, waste decimal.Decimal) {
	used = entity.RoundQty(used)
	n := decimal.NewFromInt(int64(units))
	switch unit {
	case entity.UnitPiece:
		useful = n
	case entity.UnitKilogram, entity.UnitLiter:
		if !averageWeight.IsPositive() {
			return used, decimal.Zero
		}
		useful = n.Mul(averageWeight).Div(thousand)
	default:
		return used, decimal.Zero
	}
	useful = entity.RoundQty(decimal.Min(useful, used))
	return useful, entity.RoundQty(used.Sub(useful))
}
