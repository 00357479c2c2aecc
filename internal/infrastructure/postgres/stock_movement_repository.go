package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos: solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el repositorio del libro.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, type, product_id, delta, unit, production_run_id, recipe_id, lot_id, note, created_by, ts`

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, string(m.Type), m.ProductID, m.Delta, string(m.Unit), m.Reference.ProductionRunID,
		m.Reference.RecipeID, m.Reference.LotID, m.Note, m.CreatedBy, m.Timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// List movimientos más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE ($1 = '' OR product_id = $1)
		  AND ($2 = '' OR production_run_id = $2)
		  AND ($3 = '' OR type = $3)
		  AND ($4::timestamptz IS NULL OR ts >= $4)
		  AND ($5::timestamptz IS NULL OR ts < $5)
		ORDER BY ts DESC, id DESC
		LIMIT $6 OFFSET $7`,
		filter.ProductID, filter.ProductionRunID, string(filter.Type), filter.From, filter.To,
		nullIfZero(filter.Limit), filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var typ, unit string
		if err := rows.Scan(&m.ID, &typ, &m.ProductID, &m.Delta, &unit, &m.Reference.ProductionRunID,
			&m.Reference.RecipeID, &m.Reference.LotID, &m.Note, &m.CreatedBy, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		m.Unit = entity.Unit(unit)
		list = append(list, &m)
	}
	return list, rows.Err()
}
