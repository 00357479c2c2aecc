package entity

import "strings"

// Unit unidad de medida. Las recetas usan unidades base (g, kg, ml, l, unit);
// el stock de un producto se lleva en kg, l o unit.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "unit"
)

// ParseUnit normaliza la unidad (minúsculas, sin espacios). Acepta "unidad" como alias de unit.
// Devuelve false si la unidad no es conocida.
func ParseUnit(s string) (Unit, bool) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece:
		return u, true
	case "unidad", "u", "un":
		return UnitPiece, true
	}
	return u, false
}

// IsStockUnit indica si la unidad puede usarse para llevar stock de un producto.
func (u Unit) IsStockUnit() bool {
	return u == UnitKilogram || u == UnitLiter || u == UnitPiece
}

// IsBaseUnit indica si la unidad puede usarse en una receta.
func (u Unit) IsBaseUnit() bool {
	switch u {
	case UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece:
		return true
	}
	return false
}

func (u Unit) String() string { return string(u) }
