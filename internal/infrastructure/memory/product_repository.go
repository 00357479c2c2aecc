package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos con sus lotes embebidos.
type ProductRepo struct {
	a access
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, l := range product.Lots {
			if _, ok := st.lotOwner[l.ID]; ok {
				return domain.ErrDuplicate
			}
		}
		product.Version = 1
		st.products[product.ID] = product.Clone()
		for _, l := range product.Lots {
			st.lotOwner[l.ID] = product.ID
		}
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		out = st.products[id].Clone()
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: Run ya tiene el almacén bloqueado.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByLotID(_ context.Context, lotID string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		if pid, ok := st.lotOwner[lotID]; ok {
			out = st.products[pid].Clone()
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	var list []*entity.Product
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	err := r.a.read(func(st *state) error {
		for _, p := range st.products {
			if filter.Department != "" && p.Department != filter.Department {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
				continue
			}
			list = append(list, p.Clone())
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name == list[j].Name {
			return list[i].ID < list[j].ID
		}
		return list[i].Name < list[j].Name
	})
	return paginate(list, filter.Limit, filter.Offset), err
}

// Update reemplaza el producto si la versión coincide con la guardada e incrementa la versión.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Version != product.Version {
			return fmt.Errorf("%w: producto %s modificado por otra operación", domain.ErrConflict, product.ID)
		}
		for _, l := range product.Lots {
			if owner, ok := st.lotOwner[l.ID]; ok && owner != product.ID {
				return domain.ErrDuplicate
			}
		}
		product.Version++
		st.products[product.ID] = product.Clone()
		for _, l := range product.Lots {
			st.lotOwner[l.ID] = product.ID
		}
		return nil
	})
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.a.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return nil
		}
		for _, l := range p.Lots {
			delete(st.lotOwner, l.ID)
		}
		delete(st.products, id)
		return nil
	})
}
