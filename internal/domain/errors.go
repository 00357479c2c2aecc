package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrRunClosed          = errors.New("la corrida de producción ya está cerrada")
	ErrTransactionAborted = errors.New("transacción abortada, reintente")
)

// InsufficientStockError detalla qué producto no alcanzó a cubrir la cantidad pedida.
// errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Unit        string
	Required    decimal.Decimal
	Available   decimal.Decimal
	Shortfall   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: requerido %s %s, disponible %s %s, falta %s %s",
		e.ProductName, e.Required.String(), e.Unit, e.Available.String(), e.Unit, e.Shortfall.String(), e.Unit)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
