package mongodb

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos (solo inserciones).
type StockMovementRepo struct {
	coll *mongo.Collection
}

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if _, err := r.coll.InsertOne(ctx, toMovementDoc(m)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	q := bson.M{}
	if filter.ProductID != "" {
		q["product_id"] = filter.ProductID
	}
	if filter.ProductionRunID != "" {
		q["production_run_id"] = filter.ProductionRunID
	}
	if filter.Type != "" {
		q["type"] = string(filter.Type)
	}
	ts := bson.M{}
	if filter.From != nil {
		ts["$gte"] = *filter.From
	}
	if filter.To != nil {
		ts["$lt"] = *filter.To
	}
	if len(ts) > 0 {
		q["ts"] = ts
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "ts", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	var docs []movementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock movements: %w", err)
	}
	out := make([]*entity.StockMovement, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}
