package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe define los insumos necesarios por unidad de producto terminado.
// Las corridas copian sus requerimientos al iniciar, por lo que editar una receta no altera corridas pasadas.
type Recipe struct {
	ID            string
	Name          string
	NameKey       string          // nombre normalizado para la unicidad
	YieldPerBatch decimal.Decimal // opcional, informativo
	Ingredients   []RecipeIngredient
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecipeIngredient insumo de la receta expresado en su unidad base.
type RecipeIngredient struct {
	ProductID       string
	ProductName     string
	BaseUnit        Unit // g | kg | ml | l | unit
	QuantityPerUnit decimal.Decimal
}

// Clone devuelve una copia con su propio slice de ingredientes.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Ingredients = append([]RecipeIngredient(nil), r.Ingredients...)
	return &c
}
