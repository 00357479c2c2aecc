package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo recetas con los ingredientes en una columna JSONB.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el repositorio de recetas.
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

type ingredientJSON struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	BaseUnit        string          `json:"base_unit"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

const recipeColumns = `id, name, name_key, yield_per_batch, ingredients, created_at, updated_at`

func (r *RecipeRepo) Create(ctx context.Context, recipe *entity.Recipe) error {
	ings, err := marshalIngredients(recipe.Ingredients)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `INSERT INTO recipes (`+recipeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		recipe.ID, recipe.Name, recipe.NameKey, recipe.YieldPerBatch, ings, recipe.CreatedAt, recipe.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: receta %s", domain.ErrDuplicate, recipe.Name)
		}
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.getOne(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
}

func (r *RecipeRepo) GetByNameKey(ctx context.Context, nameKey string) (*entity.Recipe, error) {
	return r.getOne(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE name_key = $1`, nameKey)
}

func (r *RecipeRepo) getOne(ctx context.Context, query, arg string) (*entity.Recipe, error) {
	recipe, err := scanRecipe(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return recipe, nil
}

func (r *RecipeRepo) List(ctx context.Context, limit, offset int) ([]*entity.Recipe, error) {
	rows, err := r.q.Query(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY name_key LIMIT $1 OFFSET $2`,
		nullIfZero(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		list = append(list, recipe)
	}
	return list, rows.Err()
}

func (r *RecipeRepo) Update(ctx context.Context, recipe *entity.Recipe) error {
	ings, err := marshalIngredients(recipe.Ingredients)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE recipes SET name = $2, name_key = $3, yield_per_batch = $4, ingredients = $5, updated_at = $6
		WHERE id = $1`,
		recipe.ID, recipe.Name, recipe.NameKey, recipe.YieldPerBatch, ings, recipe.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: receta %s", domain.ErrDuplicate, recipe.Name)
		}
		return fmt.Errorf("update recipe: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecipeRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

func marshalIngredients(in []entity.RecipeIngredient) ([]byte, error) {
	docs := make([]ingredientJSON, 0, len(in))
	for _, ing := range in {
		docs = append(docs, ingredientJSON{
			ProductID:       ing.ProductID,
			ProductName:     ing.ProductName,
			BaseUnit:        string(ing.BaseUnit),
			QuantityPerUnit: ing.QuantityPerUnit,
		})
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("marshal ingredients: %w", err)
	}
	return b, nil
}

func scanRecipe(row pgx.Row) (*entity.Recipe, error) {
	var recipe entity.Recipe
	var raw []byte
	if err := row.Scan(&recipe.ID, &recipe.Name, &recipe.NameKey, &recipe.YieldPerBatch, &raw,
		&recipe.CreatedAt, &recipe.UpdatedAt); err != nil {
		return nil, err
	}
	var docs []ingredientJSON
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	for _, d := range docs {
		recipe.Ingredients = append(recipe.Ingredients, entity.RecipeIngredient{
			ProductID:       d.ProductID,
			ProductName:     d.ProductName,
			BaseUnit:        entity.Unit(d.BaseUnit),
			QuantityPerUnit: d.QuantityPerUnit,
		})
	}
	return &recipe, nil
}
