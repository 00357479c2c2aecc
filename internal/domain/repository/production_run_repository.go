package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
)

// RunFilter filtros de listado de corridas. Los resultados van ordenados por fecha de creación descendente.
type RunFilter struct {
	Status   entity.RunStatus
	RecipeID string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// ProductionRunRepository define el puerto de persistencia para ProductionRun.
type ProductionRunRepository interface {
	Create(ctx context.Context, run *entity.ProductionRun) error
	GetByID(ctx context.Context, id string) (*entity.ProductionRun, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ProductionRun, error)
	Update(ctx context.Context, run *entity.ProductionRun) error
	List(ctx context.Context, filter RunFilter) ([]*entity.ProductionRun, error)
}
