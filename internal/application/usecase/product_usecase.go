package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. La cantidad se maneja vía lotes.
type ProductUseCase struct {
	repo       repository.ProductRepository
	recipeRepo repository.RecipeRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, recipeRepo repository.RecipeRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, recipeRepo: recipeRepo}
}

func parseStockUnit(s string) (entity.Unit, error) {
	u, ok := entity.ParseUnit(s)
	if !ok || !u.IsStockUnit() {
		return "", fmt.Errorf("%w: unidad de stock inválida %q (kg, l o unit)", domain.ErrInvalidInput, s)
	}
	return u, nil
}

// Create crea un nuevo producto sin stock.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	unit, err := parseStockUnit(in.Unit)
	if err != nil {
		return nil, err
	}
	if in.CriticalStock.IsNegative() || in.AverageWeight.IsNegative() {
		return nil, fmt.Errorf("%w: stock crítico y peso promedio no pueden ser negativos", domain.ErrInvalidInput)
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		Name:          name,
		Unit:          unit,
		Quantity:      decimal.Zero,
		CriticalStock: entity.RoundQty(in.CriticalStock),
		Department:    strings.TrimSpace(in.Department),
		AverageWeight: entity.RoundQty(in.AverageWeight),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product, true), nil
}

// GetByID obtiene un producto por ID con sus lotes.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return dto.ToProductResponse(product, true), nil
}

// Update actualiza atributos del producto. La unidad solo puede cambiar si no queda stock activo.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
		}
		product.Name = name
	}
	if in.Unit != nil {
		unit, err := parseStockUnit(*in.Unit)
		if err != nil {
			return nil, err
		}
		if unit != product.Unit && product.HasActiveStock() {
			return nil, fmt.Errorf("%w: no se puede cambiar la unidad de un producto con stock", domain.ErrConflict)
		}
		product.Unit = unit
	}
	if in.CriticalStock != nil {
		if in.CriticalStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.CriticalStock = entity.RoundQty(*in.CriticalStock)
	}
	if in.Department != nil {
		product.Department = strings.TrimSpace(*in.Department)
	}
	if in.AverageWeight != nil {
		if in.AverageWeight.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.AverageWeight = entity.RoundQty(*in.AverageWeight)
	}
	product.Touch(time.Now())
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product, true), nil
}

// List lista productos (sin lotes) con filtro opcional por departamento y nombre.
func (uc *ProductUseCase) List(ctx context.Context, department, search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Department: department,
		Search:     search,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.ToProductResponse(p, false))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto que nunca tuvo lotes y que ninguna receta usa.
// Con historial de lotes el producto se conserva para auditoría.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	if len(product.Lots) > 0 {
		return fmt.Errorf("%w: el producto tiene historial de lotes", domain.ErrConflict)
	}
	recipes, err := uc.recipeRepo.List(ctx, 0, 0)
	if err != nil {
		return err
	}
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if ing.ProductID == id {
				return fmt.Errorf("%w: la receta %s usa este producto", domain.ErrConflict, r.Name)
			}
		}
	}
	return uc.repo.Delete(ctx, id)
}
