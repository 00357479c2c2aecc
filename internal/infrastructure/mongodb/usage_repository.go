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

var _ repository.UsageRepository = (*UsageRepo)(nil)

// UsageRepo registro de uso diario (solo inserciones).
type UsageRepo struct {
	coll *mongo.Collection
}

func (r *UsageRepo) Create(ctx context.Context, u *entity.UsageRecord) error {
	if _, err := r.coll.InsertOne(ctx, toUsageDoc(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

func (r *UsageRepo) List(ctx context.Context, filter repository.UsageFilter) ([]*entity.UsageRecord, error) {
	q := bson.M{}
	if filter.ProductID != "" {
		q["product_id"] = filter.ProductID
	}
	at := bson.M{}
	if filter.From != nil {
		at["$gte"] = *filter.From
	}
	if filter.To != nil {
		at["$lt"] = *filter.To
	}
	if len(at) > 0 {
		q["recorded_at"] = at
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	var docs []usageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode usage records: %w", err)
	}
	out := make([]*entity.UsageRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}
