package entity

import "github.com/shopspring/decimal"

// QuantityPrecision dígitos decimales con los que se guardan todas las cantidades.
const QuantityPrecision = 6

// RoundQty redondea una cantidad a QuantityPrecision decimales.
func RoundQty(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityPrecision)
}
