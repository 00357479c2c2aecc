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

var _ repository.ProductionRunRepository = (*ProductionRunRepo)(nil)

// ProductionRunRepo corridas con requerimientos y consumos embebidos.
type ProductionRunRepo struct {
	coll *mongo.Collection
}

func (r *ProductionRunRepo) Create(ctx context.Context, run *entity.ProductionRun) error {
	run.Version = 1
	if _, err := r.coll.InsertOne(ctx, toRunDoc(run)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert production run: %w", err)
	}
	return nil
}

func (r *ProductionRunRepo) GetByID(ctx context.Context, id string) (*entity.ProductionRun, error) {
	var doc runDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find production run: %w", err)
	}
	return doc.entity(), nil
}

func (r *ProductionRunRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionRun, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductionRunRepo) Update(ctx context.Context, run *entity.ProductionRun) error {
	doc := toRunDoc(run)
	doc.Version = run.Version + 1
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": run.ID, "version": run.Version}, doc)
	if err != nil {
		return fmt.Errorf("update production run: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: corrida %s modificada por otra operación", domain.ErrConflict, run.ID)
	}
	run.Version = doc.Version
	return nil
}

func (r *ProductionRunRepo) List(ctx context.Context, filter repository.RunFilter) ([]*entity.ProductionRun, error) {
	q := bson.M{}
	if filter.Status != "" {
		q["status"] = string(filter.Status)
	}
	if filter.RecipeID != "" {
		q["recipe_id"] = filter.RecipeID
	}
	created := bson.M{}
	if filter.From != nil {
		created["$gte"] = *filter.From
	}
	if filter.To != nil {
		created["$lt"] = *filter.To
	}
	if len(created) > 0 {
		q["created_at"] = created
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list production runs: %w", err)
	}
	var docs []runDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode production runs: %w", err)
	}
	out := make([]*entity.ProductionRun, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}
