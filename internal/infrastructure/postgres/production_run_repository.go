package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductionRunRepository = (*ProductionRunRepo)(nil)

// ProductionRunRepo corridas con requerimientos y consumos como JSONB (copias congeladas).
type ProductionRunRepo struct {
	q Querier
}

// NewProductionRunRepository construye el repositorio de corridas.
func NewProductionRunRepository(q Querier) *ProductionRunRepo {
	return &ProductionRunRepo{q: q}
}

type requiredJSON struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type consumedLotJSON struct {
	LotID      string          `json:"lot_id"`
	Code       string          `json:"code"`
	InvoiceRef string          `json:"invoice_ref"`
	Quantity   decimal.Decimal `json:"quantity"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
}

type consumedJSON struct {
	ProductID         string            `json:"product_id"`
	ProductName       string            `json:"product_name"`
	Unit              string            `json:"unit"`
	Quantity          decimal.Decimal   `json:"quantity"`
	ConversionSkipped bool              `json:"conversion_skipped,omitempty"`
	Lots              []consumedLotJSON `json:"lots"`
}

const runColumns = `id, recipe_id, recipe_name, planned_output, actual_output, required, consumed,
	started_at, ended_at, duration_sec, status, created_by, final_product_id, final_lot_id,
	cancel_reason, version, created_at, updated_at`

func (r *ProductionRunRepo) Create(ctx context.Context, run *entity.ProductionRun) error {
	required, consumed, err := encodeRun(run)
	if err != nil {
		return err
	}
	run.Version = 1
	_, err = r.q.Exec(ctx, `INSERT INTO production_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		run.ID, run.RecipeID, run.RecipeName, run.PlannedOutput, run.ActualOutput, required, consumed,
		run.StartedAt, run.EndedAt, run.DurationSeconds, string(run.Status), run.CreatedBy,
		run.FinalProductID, run.FinalLotID, run.CancelReason, run.Version, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert production run: %w", err)
	}
	return nil
}

func (r *ProductionRunRepo) GetByID(ctx context.Context, id string) (*entity.ProductionRun, error) {
	return r.get(ctx, `SELECT `+runColumns+` FROM production_runs WHERE id = $1`, id)
}

// GetForUpdate bloquea la corrida: dos confirmaciones concurrentes se serializan y la segunda
// ve el estado closed.
func (r *ProductionRunRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionRun, error) {
	return r.get(ctx, `SELECT `+runColumns+` FROM production_runs WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductionRunRepo) get(ctx context.Context, query, id string) (*entity.ProductionRun, error) {
	run, err := scanRun(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production run: %w", err)
	}
	return run, nil
}

func (r *ProductionRunRepo) Update(ctx context.Context, run *entity.ProductionRun) error {
	required, consumed, err := encodeRun(run)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE production_runs SET
			actual_output = $3, required = $4, consumed = $5, ended_at = $6, duration_sec = $7,
			status = $8, final_product_id = $9, final_lot_id = $10, cancel_reason = $11,
			updated_at = $12, version = version + 1
		WHERE id = $1 AND version = $2`,
		run.ID, run.Version, run.ActualOutput, required, consumed, run.EndedAt, run.DurationSeconds,
		string(run.Status), run.FinalProductID, run.FinalLotID, run.CancelReason, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update production run: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: corrida %s modificada por otra operación", domain.ErrConflict, run.ID)
	}
	run.Version++
	return nil
}

// List corridas más recientes primero. From es inclusivo y To exclusivo sobre created_at.
func (r *ProductionRunRepo) List(ctx context.Context, filter repository.RunFilter) ([]*entity.ProductionRun, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+runColumns+` FROM production_runs
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR recipe_id = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6`,
		string(filter.Status), filter.RecipeID, filter.From, filter.To, nullIfZero(filter.Limit), filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list production runs: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production run: %w", err)
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

func encodeRun(run *entity.ProductionRun) (required, consumed []byte, err error) {
	req := make([]requiredJSON, 0, len(run.Required))
	for _, ri := range run.Required {
		req = append(req, requiredJSON{ProductID: ri.ProductID, ProductName: ri.ProductName, Unit: string(ri.Unit), Quantity: ri.Quantity})
	}
	con := make([]consumedJSON, 0, len(run.Consumed))
	for _, ci := range run.Consumed {
		doc := consumedJSON{
			ProductID:         ci.ProductID,
			ProductName:       ci.ProductName,
			Unit:              string(ci.Unit),
			Quantity:          ci.Quantity,
			ConversionSkipped: ci.ConversionSkipped,
			Lots:              make([]consumedLotJSON, 0, len(ci.Lots)),
		}
		for _, l := range ci.Lots {
			doc.Lots = append(doc.Lots, consumedLotJSON(l))
		}
		con = append(con, doc)
	}
	if required, err = json.Marshal(req); err != nil {
		return nil, nil, fmt.Errorf("marshal required: %w", err)
	}
	if consumed, err = json.Marshal(con); err != nil {
		return nil, nil, fmt.Errorf("marshal consumed: %w", err)
	}
	return required, consumed, nil
}

func scanRun(row pgx.Row) (*entity.ProductionRun, error) {
	var run entity.ProductionRun
	var status string
	var rawReq, rawCon []byte
	if err := row.Scan(&run.ID, &run.RecipeID, &run.RecipeName, &run.PlannedOutput, &run.ActualOutput,
		&rawReq, &rawCon, &run.StartedAt, &run.EndedAt, &run.DurationSeconds, &status, &run.CreatedBy,
		&run.FinalProductID, &run.FinalLotID, &run.CancelReason, &run.Version, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	run.Status = entity.RunStatus(status)

	var req []requiredJSON
	if err := json.Unmarshal(rawReq, &req); err != nil {
		return nil, fmt.Errorf("decode required: %w", err)
	}
	for _, d := range req {
		run.Required = append(run.Required, entity.RequiredIngredient{
			ProductID: d.ProductID, ProductName: d.ProductName, Unit: entity.Unit(d.Unit), Quantity: d.Quantity,
		})
	}
	var con []consumedJSON
	if err := json.Unmarshal(rawCon, &con); err != nil {
		return nil, fmt.Errorf("decode consumed: %w", err)
	}
	for _, d := range con {
		ci := entity.ConsumedIngredient{
			ProductID:         d.ProductID,
			ProductName:       d.ProductName,
			Unit:              entity.Unit(d.Unit),
			Quantity:          d.Quantity,
			ConversionSkipped: d.ConversionSkipped,
		}
		for _, l := range d.Lots {
			ci.Lots = append(ci.Lots, entity.ConsumedLot(l))
		}
		run.Consumed = append(run.Consumed, ci)
	}
	return &run, nil
}
