package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RecipeUseCase casos de uso CRUD para recetas. El nombre es único sin distinguir
// mayúsculas ni acentos ("Pan de Campo" == "pan de campó").
type RecipeUseCase struct {
	repo        repository.RecipeRepository
	productRepo repository.ProductRepository
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(repo repository.RecipeRepository, productRepo repository.ProductRepository) *RecipeUseCase {
	return &RecipeUseCase{repo: repo, productRepo: productRepo}
}

// NameKey normaliza un nombre: sin acentos, minúsculas y espacios simples.
func NameKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, name)
	if err != nil {
		out = name
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Create crea una receta validando que cada insumo exista.
func (uc *RecipeUseCase) Create(ctx context.Context, in dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.YieldPerBatch.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	key := NameKey(name)
	if existing, err := uc.repo.GetByNameKey(ctx, key); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: ya existe la receta %s", domain.ErrDuplicate, existing.Name)
	}
	ingredients, err := uc.buildIngredients(ctx, in.Ingredients)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	recipe := &entity.Recipe{
		ID:            uuid.New().String(),
		Name:          name,
		NameKey:       key,
		YieldPerBatch: entity.RoundQty(in.YieldPerBatch),
		Ingredients:   ingredients,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return dto.ToRecipeResponse(recipe), nil
}

// GetByID obtiene una receta.
func (uc *RecipeUseCase) GetByID(ctx context.Context, id string) (*dto.RecipeResponse, error) {
	recipe, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("%w: receta %s", domain.ErrNotFound, id)
	}
	return dto.ToRecipeResponse(recipe), nil
}

// Update edita una receta. Las corridas ya iniciadas conservan su propia copia de requerimientos.
func (uc *RecipeUseCase) Update(ctx context.Context, id string, in dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	recipe, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("%w: receta %s", domain.ErrNotFound, id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
		}
		key := NameKey(name)
		if key != recipe.NameKey {
			existing, err := uc.repo.GetByNameKey(ctx, key)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != recipe.ID {
				return nil, fmt.Errorf("%w: ya existe la receta %s", domain.ErrDuplicate, existing.Name)
			}
		}
		recipe.Name = name
		recipe.NameKey = key
	}
	if in.YieldPerBatch != nil {
		if in.YieldPerBatch.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		recipe.YieldPerBatch = entity.RoundQty(*in.YieldPerBatch)
	}
	if in.Ingredients != nil {
		ingredients, err := uc.buildIngredients(ctx, in.Ingredients)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = ingredients
	}
	recipe.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, recipe); err != nil {
		return nil, err
	}
	return dto.ToRecipeResponse(recipe), nil
}

// List lista recetas por nombre.
func (uc *RecipeUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.RecipeListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RecipeResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *dto.ToRecipeResponse(r))
	}
	return &dto.RecipeListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina una receta. Las corridas existentes conservan el nombre copiado.
func (uc *RecipeUseCase) Delete(ctx context.Context, id string) error {
	recipe, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if recipe == nil {
		return fmt.Errorf("%w: receta %s", domain.ErrNotFound, id)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *RecipeUseCase) buildIngredients(ctx context.Context, in []dto.RecipeIngredientRequest) ([]entity.RecipeIngredient, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la receta necesita al menos un insumo", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(in))
	out := make([]entity.RecipeIngredient, 0, len(in))
	for _, ing := range in {
		if seen[ing.ProductID] {
			return nil, fmt.Errorf("%w: insumo repetido %s", domain.ErrInvalidInput, ing.ProductID)
		}
		seen[ing.ProductID] = true
		unit, ok := entity.ParseUnit(ing.BaseUnit)
		if !ok || !unit.IsBaseUnit() {
			return nil, fmt.Errorf("%w: unidad base inválida %q", domain.ErrInvalidInput, ing.BaseUnit)
		}
		qty := entity.RoundQty(ing.QuantityPerUnit)
		if !qty.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad por unidad debe ser positiva", domain.ErrInvalidInput)
		}
		product, err := uc.productRepo.GetByID(ctx, ing.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, ing.ProductID)
		}
		out = append(out, entity.RecipeIngredient{
			ProductID:       product.ID,
			ProductName:     product.Name,
			BaseUnit:        unit,
			QuantityPerUnit: qty,
		})
	}
	return out, nil
}
