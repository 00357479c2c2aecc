package production

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Plan calcula lo que pediría una corrida y lo compara con el stock disponible. Solo lectura.
func (uc *UseCase) Plan(ctx context.Context, in dto.PlanRunRequest) (*dto.PlanRunResponse, error) {
	if strings.TrimSpace(in.RecipeID) == "" || !in.PlannedOutput.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	recipe, err := uc.recipeRepo.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("%w: receta %s", domain.ErrNotFound, in.RecipeID)
	}

	planned := entity.RoundQty(in.PlannedOutput)
	out := &dto.PlanRunResponse{
		RecipeID:      recipe.ID,
		RecipeName:    recipe.Name,
		PlannedOutput: planned,
		Ingredients:   make([]dto.PlanIngredientDTO, 0, len(recipe.Ingredients)),
		Feasible:      true,
	}
	for _, req := range requiredFor(recipe, planned) {
		product, err := uc.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s (%s)", domain.ErrNotFound, req.ProductName, req.ProductID)
		}
		converted, skipped, err := inventory.ConvertWithPolicy(req.Quantity, req.Unit, product.Unit, uc.policy)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", product.Name, err)
		}
		available := inventory.AvailableQuantity(product.Lots)
		shortfall := decimal.Zero
		if available.LessThan(converted) {
			shortfall = entity.RoundQty(converted.Sub(available))
		}
		item := dto.PlanIngredientDTO{
			ProductID:         product.ID,
			ProductName:       product.Name,
			RecipeUnit:        req.Unit.String(),
			Required:          req.Quantity,
			ProductUnit:       product.Unit.String(),
			RequiredInStock:   converted,
			Available:         available,
			Shortfall:         shortfall,
			Sufficient:        shortfall.IsZero(),
			ConversionSkipped: skipped,
		}
		if !item.Sufficient {
			out.Feasible = false
		}
		out.Ingredients = append(out.Ingredients, item)
	}
	return out, nil
}
