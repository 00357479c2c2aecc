package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeIngredientRequest insumo de una receta por unidad de producto terminado.
type RecipeIngredientRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	BaseUnit        string          `json:"base_unit" validate:"required,oneof=g kg ml l unit"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// CreateRecipeRequest body para POST /api/recipes.
type CreateRecipeRequest struct {
	Name          string                    `json:"name" validate:"required,min=1,max=200"`
	YieldPerBatch decimal.Decimal           `json:"yield_per_batch"`
	Ingredients   []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1"`
}

// UpdateRecipeRequest body para PUT /api/recipes/:id. Ingredients nil conserva los actuales.
type UpdateRecipeRequest struct {
	Name          *string                   `json:"name"`
	YieldPerBatch *decimal.Decimal          `json:"yield_per_batch"`
	Ingredients   []RecipeIngredientRequest `json:"ingredients"`
}

// RecipeIngredientResponse insumo con el nombre del producto al momento de guardar.
type RecipeIngredientResponse struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	BaseUnit        string          `json:"base_unit"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// RecipeResponse salida de una receta.
type RecipeResponse struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	YieldPerBatch decimal.Decimal            `json:"yield_per_batch"`
	Ingredients   []RecipeIngredientResponse `json:"ingredients"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// RecipeListResponse lista paginada de recetas.
type RecipeListResponse struct {
	Items []RecipeResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
