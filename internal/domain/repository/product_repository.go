package repository

import (
	"context"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
)

// ProductFilter filtros de listado de productos.
type ProductFilter struct {
	Department string
	Search     string // coincidencia parcial por nombre
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product y sus lotes (DIP).
// Los métodos de lectura devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueándolo hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// GetByLotID devuelve el producto dueño del lote, bloqueado para actualización.
	GetByLotID(ctx context.Context, lotID string) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// Update persiste atributos, cantidad y lotes (altas y cambios) del producto.
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
}
