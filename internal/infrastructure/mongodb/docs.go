package mongodb

import (
	"time"

	"github.com/jhoicas/Cocina-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dec convierte a Decimal128 sin pasar por float.
func dec(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDec(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

type lotDoc struct {
	ID                string               `bson:"id"`
	Code              string               `bson:"code"`
	InvoiceRef        string               `bson:"invoice_ref"`
	QuantityReceived  primitive.Decimal128 `bson:"quantity_received"`
	QuantityRemaining primitive.Decimal128 `bson:"quantity_remaining"`
	ExpiresAt         *time.Time           `bson:"expires_at,omitempty"`
	ReceivedAt        time.Time            `bson:"received_at"`
	Active            bool                 `bson:"active"`
	UpdatedAt         time.Time            `bson:"updated_at"`
}

type productDoc struct {
	ID            string               `bson:"_id"`
	Name          string               `bson:"name"`
	Unit          string               `bson:"unit"`
	Quantity      primitive.Decimal128 `bson:"quantity"`
	CriticalStock primitive.Decimal128 `bson:"critical_stock"`
	Department    string               `bson:"department"`
	AverageWeight primitive.Decimal128 `bson:"average_weight"`
	Lots          []lotDoc             `bson:"lots"`
	Version       int64                `bson:"version"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

func toProductDoc(p *entity.Product) productDoc {
	doc := productDoc{
		ID:            p.ID,
		Name:          p.Name,
		Unit:          string(p.Unit),
		Quantity:      dec(p.Quantity),
		CriticalStock: dec(p.CriticalStock),
		Department:    p.Department,
		AverageWeight: dec(p.AverageWeight),
		Lots:          make([]lotDoc, 0, len(p.Lots)),
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	for _, l := range p.Lots {
		doc.Lots = append(doc.Lots, lotDoc{
			ID:                l.ID,
			Code:              l.Code,
			InvoiceRef:        l.InvoiceRef,
			QuantityReceived:  dec(l.QuantityReceived),
			QuantityRemaining: dec(l.QuantityRemaining),
			ExpiresAt:         l.ExpiresAt,
			ReceivedAt:        l.ReceivedAt,
			Active:            l.Active,
			UpdatedAt:         l.UpdatedAt,
		})
	}
	return doc
}

func (d productDoc) entity() *entity.Product {
	p := &entity.Product{
		ID:            d.ID,
		Name:          d.Name,
		Unit:          entity.Unit(d.Unit),
		Quantity:      fromDec(d.Quantity),
		CriticalStock: fromDec(d.CriticalStock),
		Department:    d.Department,
		AverageWeight: fromDec(d.AverageWeight),
		Version:       d.Version,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, l := range d.Lots {
		p.Lots = append(p.Lots, entity.Lot{
			ID:                l.ID,
			ProductID:         d.ID,
			Code:              l.Code,
			InvoiceRef:        l.InvoiceRef,
			QuantityReceived:  fromDec(l.QuantityReceived),
			QuantityRemaining: fromDec(l.QuantityRemaining),
			ExpiresAt:         l.ExpiresAt,
			ReceivedAt:        l.ReceivedAt,
			Active:            l.Active,
			UpdatedAt:         l.UpdatedAt,
		})
	}
	return p
}

type ingredientDoc struct {
	ProductID       string               `bson:"product_id"`
	ProductName     string               `bson:"product_name"`
	BaseUnit        string               `bson:"base_unit"`
	QuantityPerUnit primitive.Decimal128 `bson:"quantity_per_unit"`
}

type recipeDoc struct {
	ID            string               `bson:"_id"`
	Name          string               `bson:"name"`
	NameKey       string               `bson:"name_key"`
	YieldPerBatch primitive.Decimal128 `bson:"yield_per_batch"`
	Ingredients   []ingredientDoc      `bson:"ingredients"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

func toRecipeDoc(r *entity.Recipe) recipeDoc {
	doc := recipeDoc{
		ID:            r.ID,
		Name:          r.Name,
		NameKey:       r.NameKey,
		YieldPerBatch: dec(r.YieldPerBatch),
		Ingredients:   make([]ingredientDoc, 0, len(r.Ingredients)),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	for _, ing := range r.Ingredients {
		doc.Ingredients = append(doc.Ingredients, ingredientDoc{
			ProductID:       ing.ProductID,
			ProductName:     ing.ProductName,
			BaseUnit:        string(ing.BaseUnit),
			QuantityPerUnit: dec(ing.QuantityPerUnit),
		})
	}
	return doc
}

func (d recipeDoc) entity() *entity.Recipe {
	r := &entity.Recipe{
		ID:            d.ID,
		Name:          d.Name,
		NameKey:       d.NameKey,
		YieldPerBatch: fromDec(d.YieldPerBatch),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, ing := range d.Ingredients {
		r.Ingredients = append(r.Ingredients, entity.RecipeIngredient{
			ProductID:       ing.ProductID,
			ProductName:     ing.ProductName,
			BaseUnit:        entity.Unit(ing.BaseUnit),
			QuantityPerUnit: fromDec(ing.QuantityPerUnit),
		})
	}
	return r
}

type requiredDoc struct {
	ProductID   string               `bson:"product_id"`
	ProductName string               `bson:"product_name"`
	Unit        string               `bson:"unit"`
	Quantity    primitive.Decimal128 `bson:"quantity"`
}

type consumedLotDoc struct {
	LotID      string               `bson:"lot_id"`
	Code       string               `bson:"code"`
	InvoiceRef string               `bson:"invoice_ref"`
	Quantity   primitive.Decimal128 `bson:"quantity"`
	ExpiresAt  *time.Time           `bson:"expires_at,omitempty"`
}

type consumedDoc struct {
	ProductID         string               `bson:"product_id"`
	ProductName       string               `bson:"product_name"`
	Unit              string               `bson:"unit"`
	Quantity          primitive.Decimal128 `bson:"quantity"`
	ConversionSkipped bool                 `bson:"conversion_skipped,omitempty"`
	Lots              []consumedLotDoc     `bson:"lots"`
}

type runDoc struct {
	ID              string               `bson:"_id"`
	RecipeID        string               `bson:"recipe_id"`
	RecipeName      string               `bson:"recipe_name"`
	PlannedOutput   primitive.Decimal128 `bson:"planned_output"`
	ActualOutput    primitive.Decimal128 `bson:"actual_output"`
	Required        []requiredDoc        `bson:"required"`
	Consumed        []consumedDoc        `bson:"consumed"`
	StartedAt       time.Time            `bson:"started_at"`
	EndedAt         *time.Time           `bson:"ended_at,omitempty"`
	DurationSeconds int64                `bson:"duration_sec"`
	Status          string               `bson:"status"`
	CreatedBy       string               `bson:"created_by"`
	FinalProductID  string               `bson:"final_product_id,omitempty"`
	FinalLotID      string               `bson:"final_lot_id,omitempty"`
	CancelReason    string               `bson:"cancel_reason,omitempty"`
	Version         int64                `bson:"version"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

func toRunDoc(r *entity.ProductionRun) runDoc {
	doc := runDoc{
		ID:              r.ID,
		RecipeID:        r.RecipeID,
		RecipeName:      r.RecipeName,
		PlannedOutput:   dec(r.PlannedOutput),
		ActualOutput:    dec(r.ActualOutput),
		Required:        make([]requiredDoc, 0, len(r.Required)),
		Consumed:        make([]consumedDoc, 0, len(r.Consumed)),
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		DurationSeconds: r.DurationSeconds,
		Status:          string(r.Status),
		CreatedBy:       r.CreatedBy,
		FinalProductID:  r.FinalProductID,
		FinalLotID:      r.FinalLotID,
		CancelReason:    r.CancelReason,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	for _, ri := range r.Required {
		doc.Required = append(doc.Required, requiredDoc{
			ProductID: ri.ProductID, ProductName: ri.ProductName, Unit: string(ri.Unit), Quantity: dec(ri.Quantity),
		})
	}
	for _, ci := range r.Consumed {
		cd := consumedDoc{
			ProductID:         ci.ProductID,
			ProductName:       ci.ProductName,
			Unit:              string(ci.Unit),
			Quantity:          dec(ci.Quantity),
			ConversionSkipped: ci.ConversionSkipped,
			Lots:              make([]consumedLotDoc, 0, len(ci.Lots)),
		}
		for _, l := range ci.Lots {
			cd.Lots = append(cd.Lots, consumedLotDoc{
				LotID: l.LotID, Code: l.Code, InvoiceRef: l.InvoiceRef, Quantity: dec(l.Quantity), ExpiresAt: l.ExpiresAt,
			})
		}
		doc.Consumed = append(doc.Consumed, cd)
	}
	return doc
}

func (d runDoc) entity() *entity.ProductionRun {
	r := &entity.ProductionRun{
		ID:              d.ID,
		RecipeID:        d.RecipeID,
		RecipeName:      d.RecipeName,
		PlannedOutput:   fromDec(d.PlannedOutput),
		ActualOutput:    fromDec(d.ActualOutput),
		StartedAt:       d.StartedAt,
		EndedAt:         d.EndedAt,
		DurationSeconds: d.DurationSeconds,
		Status:          entity.RunStatus(d.Status),
		CreatedBy:       d.CreatedBy,
		FinalProductID:  d.FinalProductID,
		FinalLotID:      d.FinalLotID,
		CancelReason:    d.CancelReason,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, ri := range d.Required {
		r.Required = append(r.Required, entity.RequiredIngredient{
			ProductID: ri.ProductID, ProductName: ri.ProductName, Unit: entity.Unit(ri.Unit), Quantity: fromDec(ri.Quantity),
		})
	}
	for _, cd := range d.Consumed {
		ci := entity.ConsumedIngredient{
			ProductID:         cd.ProductID,
			ProductName:       cd.ProductName,
			Unit:              entity.Unit(cd.Unit),
			Quantity:          fromDec(cd.Quantity),
			ConversionSkipped: cd.ConversionSkipped,
		}
		for _, l := range cd.Lots {
			ci.Lots = append(ci.Lots, entity.ConsumedLot{
				LotID: l.LotID, Code: l.Code, InvoiceRef: l.InvoiceRef, Quantity: fromDec(l.Quantity), ExpiresAt: l.ExpiresAt,
			})
		}
		r.Consumed = append(r.Consumed, ci)
	}
	return r
}

type movementDoc struct {
	ID              string               `bson:"_id"`
	Type            string               `bson:"type"`
	ProductID       string               `bson:"product_id"`
	Delta           primitive.Decimal128 `bson:"delta"`
	Unit            string               `bson:"unit"`
	ProductionRunID string               `bson:"production_run_id,omitempty"`
	RecipeID        string               `bson:"recipe_id,omitempty"`
	LotID           string               `bson:"lot_id,omitempty"`
	Note            string               `bson:"note,omitempty"`
	CreatedBy       string               `bson:"created_by,omitempty"`
	Timestamp       time.Time            `bson:"ts"`
}

func toMovementDoc(m *entity.StockMovement) movementDoc {
	return movementDoc{
		ID:              m.ID,
		Type:            string(m.Type),
		ProductID:       m.ProductID,
		Delta:           dec(m.Delta),
		Unit:            string(m.Unit),
		ProductionRunID: m.Reference.ProductionRunID,
		RecipeID:        m.Reference.RecipeID,
		LotID:           m.Reference.LotID,
		Note:            m.Note,
		CreatedBy:       m.CreatedBy,
		Timestamp:       m.Timestamp,
	}
}

func (d movementDoc) entity() *entity.StockMovement {
	return &entity.StockMovement{
		ID:        d.ID,
		Type:      entity.MovementType(d.Type),
		ProductID: d.ProductID,
		Delta:     fromDec(d.Delta),
		Unit:      entity.Unit(d.Unit),
		Reference: entity.MovementReference{
			ProductionRunID: d.ProductionRunID,
			RecipeID:        d.RecipeID,
			LotID:           d.LotID,
		},
		Note:      d.Note,
		CreatedBy: d.CreatedBy,
		Timestamp: d.Timestamp,
	}
}

type usageDoc struct {
	ID          string               `bson:"_id"`
	ProductID   string               `bson:"product_id"`
	ProductName string               `bson:"product_name"`
	Unit        string               `bson:"unit"`
	Used        primitive.Decimal128 `bson:"used"`
	Units       int                  `bson:"units"`
	Useful      primitive.Decimal128 `bson:"useful"`
	Waste       primitive.Decimal128 `bson:"waste"`
	MovementID  string               `bson:"movement_id,omitempty"`
	Note        string               `bson:"note,omitempty"`
	CreatedBy   string               `bson:"created_by,omitempty"`
	RecordedAt  time.Time            `bson:"recorded_at"`
}

func toUsageDoc(u *entity.UsageRecord) usageDoc {
	return usageDoc{
		ID:          u.ID,
		ProductID:   u.ProductID,
		ProductName: u.ProductName,
		Unit:        string(u.Unit),
		Used:        dec(u.Used),
		Units:       u.Units,
		Useful:      dec(u.Useful),
		Waste:       dec(u.Waste),
		MovementID:  u.MovementID,
		Note:        u.Note,
		CreatedBy:   u.CreatedBy,
		RecordedAt:  u.RecordedAt,
	}
}

func (d usageDoc) entity() *entity.UsageRecord {
	return &entity.UsageRecord{
		ID:          d.ID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Unit:        entity.Unit(d.Unit),
		Used:        fromDec(d.Used),
		Units:       d.Units,
		Useful:      fromDec(d.Useful),
		Waste:       fromDec(d.Waste),
		MovementID:  d.MovementID,
		Note:        d.Note,
		CreatedBy:   d.CreatedBy,
		RecordedAt:  d.RecordedAt,
	}
}
