// Package mongodb implementa los repositorios sobre MongoDB. Los productos embeben sus lotes
// y las corridas sus requerimientos y consumos; cada documento mutable lleva un campo version.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Cocina-api/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collProducts  = "products"
	collRecipes   = "recipes"
	collRuns      = "production_runs"
	collMovements = "stock_movements"
	collUsage     = "usage_log"
)

// Store agrupa el cliente y la base usada por todos los repositorios.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect abre el cliente, verifica la conexión y crea los índices.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	s := &Store{client: client, db: client.Database(cfg.Database)}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// EnsureIndexes crea los índices de unicidad y de consulta (idempotente).
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collProducts: {
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
			{
				Keys: bson.D{{Key: "lots.id", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"lots.id": bson.M{"$exists": true}}),
			},
		},
		collRecipes: {
			{Keys: bson.D{{Key: "name_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collRuns: {
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		collMovements: {
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "ts", Value: -1}}},
			{Keys: bson.D{{Key: "production_run_id", Value: 1}}},
		},
		collUsage: {
			{Keys: bson.D{{Key: "recorded_at", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "recorded_at", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes %s: %w", coll, err)
		}
	}
	return nil
}

// Products repositorio de productos. Dentro de TxRunner.Run el ctx recibido es de sesión.
func (s *Store) Products() *ProductRepo { return &ProductRepo{coll: s.db.Collection(collProducts)} }

// Recipes repositorio de recetas.
func (s *Store) Recipes() *RecipeRepo { return &RecipeRepo{coll: s.db.Collection(collRecipes)} }

// Runs repositorio de corridas.
func (s *Store) Runs() *ProductionRunRepo { return &ProductionRunRepo{coll: s.db.Collection(collRuns)} }

// Movements repositorio del libro de movimientos.
func (s *Store) Movements() *StockMovementRepo {
	return &StockMovementRepo{coll: s.db.Collection(collMovements)}
}

// Usage registro de uso diario de cocina.
func (s *Store) Usage() *UsageRepo { return &UsageRepo{coll: s.db.Collection(collUsage)} }

// Close cierra la conexión con MongoDB.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}
