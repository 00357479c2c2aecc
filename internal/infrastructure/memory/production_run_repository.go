package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var _ repository.ProductionRunRepository = (*ProductionRunRepo)(nil)

type ProductionRunRepo struct {
	a access
}

func (r *ProductionRunRepo) Create(_ context.Context, run *entity.ProductionRun) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.runs[run.ID]; ok {
			return domain.ErrDuplicate
		}
		run.Version = 1
		st.runs[run.ID] = run.Clone()
		return nil
	})
}

func (r *ProductionRunRepo) GetByID(_ context.Context, id string) (*entity.ProductionRun, error) {
	var out *entity.ProductionRun
	err := r.a.read(func(st *state) error {
		out = st.runs[id].Clone()
		return nil
	})
	return out, err
}

func (r *ProductionRunRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionRun, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductionRunRepo) Update(_ context.Context, run *entity.ProductionRun) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.runs[run.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Version != run.Version {
			return fmt.Errorf("%w: corrida %s modificada por otra operación", domain.ErrConflict, run.ID)
		}
		run.Version++
		st.runs[run.ID] = run.Clone()
		return nil
	})
}

func (r *ProductionRunRepo) List(_ context.Context, filter repository.RunFilter) ([]*entity.ProductionRun, error) {
	var list []*entity.ProductionRun
	err := r.a.read(func(st *state) error {
		for _, run := range st.runs {
			if filter.Status != "" && run.Status != filter.Status {
				continue
			}
			if filter.RecipeID != "" && run.RecipeID != filter.RecipeID {
				continue
			}
			if filter.From != nil && run.CreatedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !run.CreatedAt.Before(*filter.To) {
				continue
			}
			list = append(list, run.Clone())
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return paginate(list, filter.Limit, filter.Offset), err
}
