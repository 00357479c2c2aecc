// Package pdf genera la planilla de producción de una corrida.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Receta + estado      │  N° corrida + fechas         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PLAN: planificado / producido / duración / responsable      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA REQUERIDOS: Insumo | Cantidad | Unidad                │
//	│  TABLA CONSUMIDOS: Insumo | Lote | Factura | Vence | Cant.   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID de la corrida + firmas                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Cocina-api/internal/application/production"
	"github.com/jhoicas/Cocina-api/internal/domain/entity"
)

var _ production.RunSheetGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

const dateLayout = "02/01/2006 15:04"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa production.RunSheetGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	kitchenName string
}

// NewMarotoPDFGenerator construye el generador; kitchenName va en el encabezado.
func NewMarotoPDFGenerator(kitchenName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{kitchenName: kitchenName}
}

// GenerateRunSheet genera el PDF y devuelve sus bytes. recipe puede ser nil.
func (g *MarotoPDFGenerator) GenerateRunSheet(
	_ context.Context,
	run *entity.ProductionRun,
	recipe *entity.Recipe,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Planilla de producción", true).
		WithAuthor(nonEmpty(g.kitchenName, "Cocina"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.kitchenName, run))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(run, recipe))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("INSUMOS REQUERIDOS"))
	m.AddRows(requiredHeaderRow())
	m.AddRows(requiredRows(run.Required)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("CONSUMO POR LOTE (FEFO)"))
	if run.HasConsumption() {
		m.AddRows(consumedHeaderRow())
		m.AddRows(consumedRows(run.Consumed)...)
	} else {
		m.AddRows(row.New(7).Add(col.New(12).Add(
			text.New("Sin consumo registrado: se descuenta al confirmar la corrida.", props.Text{
				Size: 8, Top: 1, Color: colorGray,
			}),
		)))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(run))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: cocina + receta (izq) y N° de corrida + estado (der).
func headerRow(kitchen string, run *entity.ProductionRun) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(kitchen, "Cocina"), props.Text{
				Size: 8, Top: 1, Color: colorGray,
			}),
			text.New(run.RecipeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 6,
			}),
		),
		col.New(5).Add(
			text.New("PLANILLA DE PRODUCCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(production.RunSuffix(run.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Estado: "+statusLabel(run.Status), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: statusColor(run.Status),
			}),
		),
	)
}

// summaryRow: cantidades, fechas y responsable.
func summaryRow(run *entity.ProductionRun, recipe *entity.Recipe) core.Row {
	yield := "-"
	if recipe != nil && recipe.YieldPerBatch.IsPositive() {
		yield = recipe.YieldPerBatch.String()
	}
	ended := "-"
	if run.EndedAt != nil {
		ended = run.EndedAt.Format(dateLayout)
	}
	return row.New(16).Add(
		col.New(6).Add(
			text.New(fmt.Sprintf("Planificado: %s   |   Producido: %s   |   Rinde por tanda: %s",
				run.PlannedOutput.String(), run.ActualOutput.String(), yield,
			), props.Text{Size: 8, Top: 2}),
			text.New("Responsable: "+nonEmpty(run.CreatedBy, "-"), props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
		col.New(6).Add(
			text.New("Inicio: "+run.StartedAt.Format(dateLayout), props.Text{
				Size: 8, Top: 2, Align: align.Right,
			}),
			text.New(fmt.Sprintf("Fin: %s   |   Duración: %s", ended, formatDuration(run.DurationSeconds)), props.Text{
				Size: 8, Top: 8, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func requiredHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("Insumo", 8, align.Left),
		headerCell("Cantidad", 2, align.Right),
		headerCell("Unidad", 2, align.Center),
	)
}

// requiredRows: una fila por insumo requerido.
func requiredRows(required []entity.RequiredIngredient) []core.Row {
	result := make([]core.Row, 0, len(required))
	for _, r := range required {
		result = append(result, row.New(6).Add(
			col.New(8).Add(text.New(r.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(r.Quantity.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(r.Unit.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

func consumedHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("Insumo", 4, align.Left),
		headerCell("Lote", 2, align.Left),
		headerCell("Factura", 2, align.Left),
		headerCell("Vence", 2, align.Center),
		headerCell("Cantidad", 2, align.Right),
	)
}

// consumedRows: una fila por lote descontado, agrupadas por insumo.
func consumedRows(consumed []entity.ConsumedIngredient) []core.Row {
	var result []core.Row
	for _, c := range consumed {
		name := c.ProductName
		if c.ConversionSkipped {
			name += " (*)"
		}
		for i, l := range c.Lots {
			label := ""
			if i == 0 {
				label = name
			}
			exp := "-"
			if l.ExpiresAt != nil {
				exp = l.ExpiresAt.Format("02/01/2006")
			}
			result = append(result, row.New(6).Add(
				col.New(4).Add(text.New(label, props.Text{Size: 8, Top: 1, Left: 1})),
				col.New(2).Add(text.New(l.Code, props.Text{Size: 8, Top: 1})),
				col.New(2).Add(text.New(nonEmpty(l.InvoiceRef, "-"), props.Text{Size: 8, Top: 1})),
				col.New(2).Add(text.New(exp, props.Text{Size: 8, Align: align.Center, Top: 1})),
				col.New(2).Add(text.New(l.Quantity.String()+" "+c.Unit.String(), props.Text{
					Size: 8, Align: align.Right, Top: 1, Right: 1,
				})),
			))
		}
	}
	return result
}

// footerRow: QR con el ID de la corrida y espacio para firmas.
func footerRow(run *entity.ProductionRun) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(run.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("(*) cantidad descontada sin conversión de unidad", props.Text{
				Size: 7, Top: 2, Left: 3, Color: colorGray,
			}),
			text.New("Firma cocinero: ______________________", props.Text{
				Size: 9, Top: 16, Left: 3,
			}),
			text.New("Firma supervisor: ____________________", props.Text{
				Size: 9, Top: 28, Left: 3,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func statusLabel(s entity.RunStatus) string {
	switch s {
	case entity.RunStatusClosed:
		return "CERRADA"
	case entity.RunStatusCancelled:
		return "CANCELADA"
	}
	return "ABIERTA"
}

func statusColor(s entity.RunStatus) *props.Color {
	if s == entity.RunStatusCancelled {
		return colorAlert
	}
	return colorGray
}

// formatDuration: 3725 → "1h 02m 05s".
func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	return fmt.Sprintf("%dm %02ds", m, s)
}
