package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
)

// MovementFilter filtros de consulta del libro de movimientos.
type MovementFilter struct {
	ProductID       string
	ProductionRunID string
	Type            entity.MovementType
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
}

// StockMovementRepository define el puerto del libro de movimientos (solo altas y consultas).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
