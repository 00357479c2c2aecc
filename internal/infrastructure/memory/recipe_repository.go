package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

type RecipeRepo struct {
	a access
}

func (r *RecipeRepo) Create(_ context.Context, recipe *entity.Recipe) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.recipes[recipe.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.recipes {
			if other.NameKey == recipe.NameKey {
				return domain.ErrDuplicate
			}
		}
		st.recipes[recipe.ID] = recipe.Clone()
		return nil
	})
}

func (r *RecipeRepo) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.a.read(func(st *state) error {
		out = st.recipes[id].Clone()
		return nil
	})
	return out, err
}

func (r *RecipeRepo) GetByNameKey(_ context.Context, nameKey string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.a.read(func(st *state) error {
		for _, rec := range st.recipes {
			if rec.NameKey == nameKey {
				out = rec.Clone()
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *RecipeRepo) List(_ context.Context, limit, offset int) ([]*entity.Recipe, error) {
	var list []*entity.Recipe
	err := r.a.read(func(st *state) error {
		for _, rec := range st.recipes {
			list = append(list, rec.Clone())
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool { return list[i].NameKey < list[j].NameKey })
	return paginate(list, limit, offset), err
}

func (r *RecipeRepo) Update(_ context.Context, recipe *entity.Recipe) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.recipes[recipe.ID]; !ok {
			return domain.ErrNotFound
		}
		for id, other := range st.recipes {
			if id != recipe.ID && other.NameKey == recipe.NameKey {
				return domain.ErrDuplicate
			}
		}
		st.recipes[recipe.ID] = recipe.Clone()
		return nil
	})
}

func (r *RecipeRepo) Delete(_ context.Context, id string) error {
	return r.a.write(func(st *state) error {
		delete(st.recipes, id)
		return nil
	})
}
