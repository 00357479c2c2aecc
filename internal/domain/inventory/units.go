package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// UnitPolicy define qué hacer cuando no hay conversión conocida entre dos unidades.
type UnitPolicy int

const (
	// PassthroughOnUnknownUnit devuelve la cantidad sin convertir (comportamiento histórico).
	// Acepta en silencio pares como unit → kg; el llamador debe registrar la conversión omitida.
	PassthroughOnUnknownUnit UnitPolicy = iota
	// RejectUnknownUnit rechaza la conversión con domain.ErrInvalidInput.
	RejectUnknownUnit
)

// ParseUnitPolicy interpreta la política desde configuración ("passthrough" | "reject").
func ParseUnitPolicy(s string) (UnitPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "passthrough":
		return PassthroughOnUnknownUnit, nil
	case "reject":
		return RejectUnknownUnit, nil
	}
	return PassthroughOnUnknownUnit, fmt.Errorf("política de unidades desconocida: %q", s)
}

func (p UnitPolicy) String() string {
	if p == RejectUnknownUnit {
		return "reject"
	}
	return "passthrough"
}

var thousand = decimal.NewFromInt(1000)

// Convert convierte amount de from a to. Soporta g ↔ kg y ml ↔ l (factor 1000).
// Si las unidades son iguales devuelve amount. Para cualquier otro par devuelve amount
// sin convertir y converted=false. Función pura.
func Convert(amount decimal.Decimal, from, to entity.Unit) (decimal.Decimal, bool) {
	f, _ := entity.ParseUnit(string(from))
	t, _ := entity.ParseUnit(string(to))
	if f == t {
		return amount, true
	}
	switch {
	case f == entity.UnitGram && t == entity.UnitKilogram,
		f == entity.UnitMilliliter && t == entity.UnitLiter:
		return amount.Div(thousand), true
	case f == entity.UnitKilogram && t == entity.UnitGram,
		f == entity.UnitLiter && t == entity.UnitMilliliter:
		return amount.Mul(thousand), true
	}
	return amount, false
}

// ConvertWithPolicy aplica Convert y resuelve los pares desconocidos según la política.
// skipped=true cuando se devolvió la cantidad sin convertir.
func ConvertWithPolicy(amount decimal.Decimal, from, to entity.Unit, policy UnitPolicy) (out decimal.Decimal, skipped bool, err error) {
	out, ok := Convert(amount, from, to)
	if ok {
		return entity.RoundQty(out), false, nil
	}
	if policy == RejectUnknownUnit {
		return decimal.Zero, true, fmt.Errorf("%w: no hay conversión de %s a %s", domain.ErrInvalidInput, from, to)
	}
	return entity.RoundQty(amount), true, nil
}
