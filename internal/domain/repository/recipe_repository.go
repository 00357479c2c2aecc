package repository

import (
	"context"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
)

// RecipeRepository define el puerto de persistencia para Recipe.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *entity.Recipe) error
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	GetByNameKey(ctx context.Context, nameKey string) (*entity.Recipe, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Recipe, error)
	Update(ctx context.Context, recipe *entity.Recipe) error
	Delete(ctx context.Context, id string) error
}
