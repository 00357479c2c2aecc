package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
)

// UsageFilter filtros del registro de uso diario. From inclusivo, To exclusivo.
type UsageFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// UsageRepository define el puerto del registro de uso (solo altas y consultas).
type UsageRepository interface {
	Create(ctx context.Context, record *entity.UsageRecord) error
	List(ctx context.Context, filter UsageFilter) ([]*entity.UsageRecord, error)
}
