package dto

import "github.com/jhoicas/Cocina-api/internal/domain/entity"

// ToProductResponse convierte la entidad; withLots incluye el detalle de lotes.
func ToProductResponse(p *entity.Product, withLots bool) *ProductResponse {
	if p == nil {
		return nil
	}
	out := &ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Unit:          p.Unit.String(),
		Quantity:      p.Quantity,
		CriticalStock: p.CriticalStock,
		BelowCritical: p.BelowCritical(),
		Department:    p.Department,
		AverageWeight: p.AverageWeight,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if withLots {
		out.Lots = make([]LotResponse, 0, len(p.Lots))
		for _, l := range p.Lots {
			out.Lots = append(out.Lots, ToLotResponse(l))
		}
	}
	return out
}

func ToLotResponse(l entity.Lot) LotResponse {
	return LotResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		Code:              l.Code,
		InvoiceRef:        l.InvoiceRef,
		QuantityReceived:  l.QuantityReceived,
		QuantityRemaining: l.QuantityRemaining,
		ExpiresAt:         l.ExpiresAt,
		ReceivedAt:        l.ReceivedAt,
		Active:            l.Active,
	}
}

func ToMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:              m.ID,
		Type:            string(m.Type),
		ProductID:       m.ProductID,
		Delta:           m.Delta,
		Unit:            m.Unit.String(),
		ProductionRunID: m.Reference.ProductionRunID,
		RecipeID:        m.Reference.RecipeID,
		LotID:           m.Reference.LotID,
		Note:            m.Note,
		CreatedBy:       m.CreatedBy,
		Timestamp:       m.Timestamp,
	}
}

func ToRecipeResponse(r *entity.Recipe) *RecipeResponse {
	if r == nil {
		return nil
	}
	out := &RecipeResponse{
		ID:            r.ID,
		Name:          r.Name,
		YieldPerBatch: r.YieldPerBatch,
		Ingredients:   make([]RecipeIngredientResponse, 0, len(r.Ingredients)),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, RecipeIngredientResponse{
			ProductID:       ing.ProductID,
			ProductName:     ing.ProductName,
			BaseUnit:        ing.BaseUnit.String(),
			QuantityPerUnit: ing.QuantityPerUnit,
		})
	}
	return out
}

// ToRunResponse convierte la corrida con sus snapshots de requeridos y consumidos.
func ToRunResponse(r *entity.ProductionRun) *RunResponse {
	if r == nil {
		return nil
	}
	out := &RunResponse{
		ID:              r.ID,
		RecipeID:        r.RecipeID,
		RecipeName:      r.RecipeName,
		PlannedOutput:   r.PlannedOutput,
		ActualOutput:    r.ActualOutput,
		Required:        make([]RequiredIngredientDTO, 0, len(r.Required)),
		Consumed:        make([]ConsumedIngredientDTO, 0, len(r.Consumed)),
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		DurationSeconds: r.DurationSeconds,
		Status:          string(r.Status),
		CreatedBy:       r.CreatedBy,
		FinalProductID:  r.FinalProductID,
		FinalLotID:      r.FinalLotID,
		CancelReason:    r.CancelReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	for _, ri := range r.Required {
		out.Required = append(out.Required, RequiredIngredientDTO{
			ProductID:   ri.ProductID,
			ProductName: ri.ProductName,
			Unit:        ri.Unit.String(),
			Quantity:    ri.Quantity,
		})
	}
	for _, ci := range r.Consumed {
		c := ConsumedIngredientDTO{
			ProductID:         ci.ProductID,
			ProductName:       ci.ProductName,
			Unit:              ci.Unit.String(),
			Quantity:          ci.Quantity,
			ConversionSkipped: ci.ConversionSkipped,
			Lots:              make([]ConsumedLotDTO, 0, len(ci.Lots)),
		}
		for _, l := range ci.Lots {
			c.Lots = append(c.Lots, ConsumedLotDTO{
				LotID:      l.LotID,
				Code:       l.Code,
				InvoiceRef: l.InvoiceRef,
				Quantity:   l.Quantity,
				ExpiresAt:  l.ExpiresAt,
			})
		}
		out.Consumed = append(out.Consumed, c)
	}
	return out
}

func ToUsageRecordResponse(u *entity.UsageRecord) UsageRecordResponse {
	return UsageRecordResponse{
		ID:          u.ID,
		ProductID:   u.ProductID,
		ProductName: u.ProductName,
		Unit:        u.Unit.String(),
		Used:        u.Used,
		Units:       u.Units,
		Useful:      u.Useful,
		Waste:       u.Waste,
		MovementID:  u.MovementID,
		Note:        u.Note,
		CreatedBy:   u.CreatedBy,
		RecordedAt:  u.RecordedAt,
	}
}
