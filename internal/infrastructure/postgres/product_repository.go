package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos y sus lotes (tabla lots) sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, unit, quantity, critical_stock, department, average_weight, version, created_at, updated_at`

const lotColumns = `id, product_id, code, invoice_ref, quantity_received, quantity_remaining, expires_at, received_at, active, updated_at`

// Create persiste un producto nuevo con sus lotes.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	product.Version = 1
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.Name, string(product.Unit), product.Quantity, product.CriticalStock,
		product.Department, product.AverageWeight, product.Version, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return r.saveLots(ctx, product)
}

// GetByID obtiene un producto con sus lotes en orden de ingreso.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, id, true)
}

// GetByLotID obtiene (y bloquea) el producto dueño del lote. Solo se usa para mutar el lote.
func (r *ProductRepo) GetByLotID(ctx context.Context, lotID string) (*entity.Product, error) {
	var productID string
	err := r.q.QueryRow(ctx, `SELECT product_id FROM lots WHERE id = $1`, lotID).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot owner: %w", err)
	}
	return r.get(ctx, productID, true)
}

func (r *ProductRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	lots, err := r.lotsFor(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Lots = lots[p.ID]
	return p, nil
}

// List productos ordenados por nombre. Search filtra por nombre sin distinguir mayúsculas.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE ($1 = '' OR department = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY name, id
		LIMIT $3 OFFSET $4`,
		filter.Department, filter.Search, nullIfZero(filter.Limit), filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	var ids []string
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	lots, err := r.lotsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.Lots = lots[p.ID]
	}
	return list, nil
}

// Update guarda el producto y sus lotes si la versión coincide; incrementa la versión.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products
		SET name = $3, unit = $4, quantity = $5, critical_stock = $6, department = $7,
		    average_weight = $8, updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $2`,
		product.ID, product.Version, string(product.Unit), product.Quantity, product.CriticalStock,
		product.Department, product.AverageWeight, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, product.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check product: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: producto %s modificado por otra operación", domain.ErrConflict, product.ID)
	}
	product.Version++
	return r.saveLots(ctx, product)
}

// Delete elimina el producto (y sus lotes por cascada).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// saveLots hace upsert de cada lote; los lotes nunca se borran.
func (r *ProductRepo) saveLots(ctx context.Context, product *entity.Product) error {
	for i, l := range product.Lots {
		_, err := r.q.Exec(ctx, `
			INSERT INTO lots (`+lotColumns+`, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				code = EXCLUDED.code,
				invoice_ref = EXCLUDED.invoice_ref,
				quantity_received = EXCLUDED.quantity_received,
				quantity_remaining = EXCLUDED.quantity_remaining,
				expires_at = EXCLUDED.expires_at,
				active = EXCLUDED.active,
				updated_at = EXCLUDED.updated_at,
				position = EXCLUDED.position
			WHERE lots.product_id = EXCLUDED.product_id`,
			l.ID, product.ID, l.Code, l.InvoiceRef, l.QuantityReceived, l.QuantityRemaining,
			l.ExpiresAt, l.ReceivedAt, l.Active, l.UpdatedAt, i,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, l.Code)
			}
			return fmt.Errorf("save lot %s: %w", l.Code, err)
		}
	}
	return nil
}

func (r *ProductRepo) lotsFor(ctx context.Context, productIDs []string) (map[string][]entity.Lot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+lotColumns+` FROM lots
		WHERE product_id = ANY($1)
		ORDER BY product_id, position`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.Lot, len(productIDs))
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Code, &l.InvoiceRef, &l.QuantityReceived,
			&l.QuantityRemaining, &l.ExpiresAt, &l.ReceivedAt, &l.Active, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		out[l.ProductID] = append(out[l.ProductID], l)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var unit string
	if err := row.Scan(&p.ID, &p.Name, &unit, &p.Quantity, &p.CriticalStock, &p.Department,
		&p.AverageWeight, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Unit = entity.Unit(unit)
	return &p, nil
}
