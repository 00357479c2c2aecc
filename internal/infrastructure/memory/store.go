// Package memory implementa los puertos de persistencia en memoria. Se usa en desarrollo
// (STORE_DRIVER=memory) y en las pruebas de los casos de uso.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Cocina-api/internal/application/ports"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var (
	_ ports.TxRunner      = (*Store)(nil)
	_ ports.UsageTxRunner = (*Store)(nil)
)

type state struct {
	products  map[string]*entity.Product
	lotOwner  map[string]string // lotID -> productID
	recipes   map[string]*entity.Recipe
	runs      map[string]*entity.ProductionRun
	movements []*entity.StockMovement
	usage     []*entity.UsageRecord
}

func newState() state {
	return state{
		products: map[string]*entity.Product{},
		lotOwner: map[string]string{},
		recipes:  map[string]*entity.Recipe{},
		runs:     map[string]*entity.ProductionRun{},
	}
}

func (s state) clone() state {
	c := state{
		products:  make(map[string]*entity.Product, len(s.products)),
		lotOwner:  make(map[string]string, len(s.lotOwner)),
		recipes:   make(map[string]*entity.Recipe, len(s.recipes)),
		runs:      make(map[string]*entity.ProductionRun, len(s.runs)),
		movements: append([]*entity.StockMovement(nil), s.movements...),
		usage:     append([]*entity.UsageRecord(nil), s.usage...),
	}
	for k, v := range s.products {
		c.products[k] = v.Clone()
	}
	for k, v := range s.lotOwner {
		c.lotOwner[k] = v
	}
	for k, v := range s.recipes {
		c.recipes[k] = v.Clone()
	}
	for k, v := range s.runs {
		c.runs[k] = v.Clone()
	}
	return c
}

// Store guarda todo el estado detrás de un único mutex. Run trabaja sobre una copia
// y la publica solo si fn termina sin error.
type Store struct {
	mu sync.RWMutex
	st state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// access resuelve sobre qué estado opera un repositorio: el de una transacción en curso
// (ya protegido por el lock de Run) o el del almacén.
type access struct {
	s  *Store
	tx *state
}

func (a access) read(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return fn(&a.s.st)
}

func (a access) write(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(&a.s.st)
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{a: access{s: s}} }

// Recipes repositorio de recetas.
func (s *Store) Recipes() *RecipeRepo { return &RecipeRepo{a: access{s: s}} }

// Runs repositorio de corridas fuera de transacción.
func (s *Store) Runs() *ProductionRunRepo { return &ProductionRunRepo{a: access{s: s}} }

// Movements repositorio del libro de movimientos fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{a: access{s: s}} }

// Usage repositorio del registro de uso diario fuera de transacción.
func (s *Store) Usage() *UsageRepo { return &UsageRepo{a: access{s: s}} }

// Run ejecuta fn sobre una copia del estado con el almacén bloqueado; confirma reemplazando el estado.
// Un contexto cancelado antes del commit aborta la transacción.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	runRepo repository.ProductionRunRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.atomically(ctx, func(a access) error {
		return fn(ctx, &ProductRepo{a: a}, &ProductionRunRepo{a: a}, &StockMovementRepo{a: a})
	})
}

// RunUsage como Run, con el repositorio de uso diario.
func (s *Store) RunUsage(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	usageRepo repository.UsageRepository,
) error) error {
	return s.atomically(ctx, func(a access) error {
		return fn(ctx, &ProductRepo{a: a}, &StockMovementRepo{a: a}, &UsageRepo{a: a})
	})
}

func (s *Store) atomically(ctx context.Context, fn func(a access) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransactionAborted, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	a := access{s: s, tx: &work}
	if err := fn(a); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransactionAborted, err)
	}
	s.st = work
	return nil
}

// Close no libera nada; existe para cumplir el ciclo de vida del backend.
func (s *Store) Close() {}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
