package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

type UsageRepo struct {
	a access
}

func (r *UsageRepo) Create(_ context.Context, record *entity.UsageRecord) error {
	u := *record
	return r.a.write(func(st *state) error {
		st.usage = append(st.usage, &u)
		return nil
	})
}

// List devuelve los registros más recientes primero.
func (r *UsageRepo) List(_ context.Context, filter repository.UsageFilter) ([]*entity.UsageRecord, error) {
	var list []*entity.UsageRecord
	err := r.a.read(func(st *state) error {
		for i := len(st.usage) - 1; i >= 0; i-- {
			u := st.usage[i]
			if filter.ProductID != "" && u.ProductID != filter.ProductID {
				continue
			}
			if filter.From != nil && u.RecordedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !u.RecordedAt.Before(*filter.To) {
				continue
			}
			c := *u
			list = append(list, &c)
		}
		return nil
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].RecordedAt.After(list[j].RecordedAt) })
	return paginate(list, filter.Limit, filter.Offset), err
}
