package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

type StockMovementRepo struct {
	a access
}

func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	m := *movement
	return r.a.write(func(st *state) error {
		st.movements = append(st.movements, &m)
		return nil
	})
}

// List devuelve los movimientos más recientes primero.
func (r *StockMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	err := r.a.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if filter.ProductID != "" && m.ProductID != filter.ProductID {
				continue
			}
			if filter.ProductionRunID != "" && m.Reference.ProductionRunID != filter.ProductionRunID {
				continue
			}
			if filter.Type != "" && m.Type != filter.Type {
				continue
			}
			if filter.From != nil && m.Timestamp.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !m.Timestamp.Before(*filter.To) {
				continue
			}
			c := *m
			list = append(list, &c)
		}
		return nil
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.After(list[j].Timestamp) })
	return paginate(list, filter.Limit, filter.Offset), err
}
