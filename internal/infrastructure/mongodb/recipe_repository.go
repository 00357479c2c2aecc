package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo recetas; name_key tiene índice único.
type RecipeRepo struct {
	coll *mongo.Collection
}

func (r *RecipeRepo) Create(ctx context.Context, recipe *entity.Recipe) error {
	if _, err := r.coll.InsertOne(ctx, toRecipeDoc(recipe)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: receta %s", domain.ErrDuplicate, recipe.Name)
		}
		return fmt.Errorf("insert recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *RecipeRepo) GetByNameKey(ctx context.Context, nameKey string) (*entity.Recipe, error) {
	return r.findOne(ctx, bson.M{"name_key": nameKey})
}

func (r *RecipeRepo) findOne(ctx context.Context, filter bson.M) (*entity.Recipe, error) {
	var doc recipeDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return doc.entity(), nil
}

func (r *RecipeRepo) List(ctx context.Context, limit, offset int) ([]*entity.Recipe, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_key", Value: 1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	var docs []recipeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}
	out := make([]*entity.Recipe, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}

func (r *RecipeRepo) Update(ctx context.Context, recipe *entity.Recipe) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": recipe.ID}, toRecipeDoc(recipe))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: receta %s", domain.ErrDuplicate, recipe.Name)
		}
		return fmt.Errorf("update recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecipeRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
