package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

// UsageRepo registro de uso diario: solo INSERT y SELECT.
type UsageRepo struct {
	q Querier
}

// NewUsageRepository construye el repositorio.
func NewUsageRepository(q Querier) *UsageRepo {
	return &UsageRepo{q: q}
}

const usageColumns = `id, product_id, product_name, unit, used, units, useful, waste, movement_id, note, created_by, recorded_at`

func (r *UsageRepo) Create(ctx context.Context, u *entity.UsageRecord) error {
	_, err := r.q.Exec(ctx, `INSERT INTO usage_log (`+usageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.ProductID, u.ProductName, string(u.Unit), u.Used, u.Units, u.Useful, u.Waste,
		u.MovementID, u.Note, u.CreatedBy, u.RecordedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// List registros más recientes primero.
func (r *UsageRepo) List(ctx context.Context, filter repository.UsageFilter) ([]*entity.UsageRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+usageColumns+` FROM usage_log
		WHERE ($1 = '' OR product_id = $1)
		  AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		  AND ($3::timestamptz IS NULL OR recorded_at < $3)
		ORDER BY recorded_at DESC, id DESC
		LIMIT $4 OFFSET $5`,
		filter.ProductID, filter.From, filter.To, nullIfZero(filter.Limit), filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	defer rows.Close()
	var list []*entity.UsageRecord
	for rows.Next() {
		var u entity.UsageRecord
		var unit string
		if err := rows.Scan(&u.ID, &u.ProductID, &u.ProductName, &unit, &u.Used, &u.Units, &u.Useful,
			&u.Waste, &u.MovementID, &u.Note, &u.CreatedBy, &u.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		u.Unit = entity.Unit(unit)
		list = append(list, &u)
	}
	return list, rows.Err()
}
