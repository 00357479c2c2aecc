package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Cocina-api/internal/application/dto"
	"github.com/jhoicas/Cocina-api/internal/domain"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/jhoicas/Cocina-api/internal/domain/repository"
)

// LedgerUseCase consulta del libro de movimientos (auditoría; el stock actual sale de los lotes).
type LedgerUseCase struct {
	movRepo repository.StockMovementRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(movRepo repository.StockMovementRepository) *LedgerUseCase {
	return &LedgerUseCase{movRepo: movRepo}
}

// MovementQuery filtros aceptados por List.
type MovementQuery struct {
	ProductID       string
	ProductionRunID string
	Type            string
	dto.PageRequest
}

// List movimientos filtrados por producto y/o corrida, más recientes primero.
func (uc *LedgerUseCase) List(ctx context.Context, q MovementQuery) (*dto.MovementListResponse, error) {
	q.DefaultPage()
	filter := repository.MovementFilter{
		ProductID:       q.ProductID,
		ProductionRunID: q.ProductionRunID,
		Limit:           q.Limit,
		Offset:          q.Offset,
	}
	if t := entity.MovementType(q.Type); t != "" {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, q.Type)
		}
		filter.Type = t
	}
	list, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}
