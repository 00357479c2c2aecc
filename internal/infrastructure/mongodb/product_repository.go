package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos con lotes embebidos: un producto y sus lotes cambian en una sola escritura.
type ProductRepo struct {
	coll *mongo.Collection
}

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	product.Version = 1
	if _, err := r.coll.InsertOne(ctx, toProductDoc(product)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetForUpdate igual que GetByID: la exclusión la da el chequeo de versión al escribir.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProductRepo) GetByLotID(ctx context.Context, lotID string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"lots.id": lotID})
}

func (r *ProductRepo) findOne(ctx context.Context, filter bson.M) (*entity.Product, error) {
	var doc productDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return doc.entity(), nil
}

func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	q := bson.M{}
	if filter.Department != "" {
		q["department"] = filter.Department
	}
	if filter.Search != "" {
		q["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(filter.Offset))
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}

// Update reemplaza el documento solo si la versión guardada coincide.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	doc := toProductDoc(product)
	doc.Version = product.Version + 1
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": product.ID, "version": product.Version}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: lote ya asignado a otro producto", domain.ErrDuplicate)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": product.ID})
		if err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: producto %s modificado por otra operación", domain.ErrConflict, product.ID)
	}
	product.Version = doc.Version
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
