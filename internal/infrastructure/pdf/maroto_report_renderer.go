// Package pdf renderiza los reportes de movimientos de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del reporte   │  Periodo + fecha de emisión │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: entradas / salidas / insumos                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Insumo | Unidad | Entradas | Salidas              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DETALLE: Fecha | Tipo | Insumo | Cantidad                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorIn      = &props.Color{Red: 0, Green: 110, Blue: 60}
	colorOut     = &props.Color{Red: 160, Green: 30, Blue: 30}
)

var _ ports.ReportRenderer = (*MarotoReportRenderer)(nil)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoReportRenderer implementa ports.ReportRenderer usando Maroto v2.
type MarotoReportRenderer struct {
	author string
}

// NewMarotoReportRenderer construye el renderer. author va a los metadatos del PDF.
func NewMarotoReportRenderer(author string) *MarotoReportRenderer {
	return &MarotoReportRenderer{author: author}
}

// RenderInventoryReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportRenderer) RenderInventoryReport(_ context.Context, rep *dto.InventoryReportResponse) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("pdf: reporte nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(rep.Title, true).
		WithAuthor(nonEmpty(g.author, "almacen-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionRow("TOTALES POR INSUMO"))
	m.AddRows(totalsHeaderRow())
	m.AddRows(totalsRows(rep.Totals)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionRow("DETALLE DE MOVIMIENTOS"))
	m.AddRows(entriesHeaderRow())
	m.AddRows(entryRows(rep.Entries)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(rep *dto.InventoryReportResponse) core.Row {
	period := rep.StartDate
	if rep.EndDate != rep.StartDate {
		period = rep.StartDate + " a " + rep.EndDate
	}
	return row.New(18).Add(
		col.New(8).Add(
			text.New(rep.Title, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Periodo: "+period, props.Text{
				Size: 8, Align: align.Right, Top: 2,
			}),
			text.New("Emitido: "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func summaryRow(rep *dto.InventoryReportResponse) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("RESUMEN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(rep.Summary, props.Text{Size: 9, Top: 6}),
		),
	)
}

func sectionRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func headerCol(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func totalsHeaderRow() core.Row {
	return row.New(6).Add(
		headerCol("Insumo", 6, align.Left),
		headerCol("Unidad", 2, align.Center),
		headerCol("Entradas", 2, align.Right),
		headerCol("Salidas", 2, align.Right),
	)
}

func totalsRows(totals []dto.ReportIngredientTotal) []core.Row {
	if len(totals) == 0 {
		return []core.Row{emptyRow("Sin movimientos en el periodo.")}
	}
	rows := make([]core.Row, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, row.New(6).Add(
			col.New(6).Add(text.New(t.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(t.Unit, "-"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(t.In.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorIn})),
			col.New(2).Add(text.New(t.Out.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorOut})),
		))
	}
	return rows
}

func entriesHeaderRow() core.Row {
	return row.New(6).Add(
		headerCol("Fecha", 3, align.Left),
		headerCol("Tipo", 2, align.Center),
		headerCol("Insumo", 5, align.Left),
		headerCol("Cantidad", 2, align.Right),
	)
}

func entryRows(entries []dto.ReportEntry) []core.Row {
	if len(entries) == 0 {
		return []core.Row{emptyRow("Sin movimientos en el periodo.")}
	}
	rows := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		label, color := "Entrada", colorIn
		if e.OperationType == entity.OperationTypeOUT {
			label, color = "Salida", colorOut
		}
		qty := e.Quantity.String()
		if e.Unit != "" {
			qty += " " + e.Unit
		}
		rows = append(rows, row.New(6).Add(
			col.New(3).Add(text.New(e.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(label, props.Text{Size: 8, Align: align.Center, Top: 1, Color: color})),
			col.New(5).Add(text.New(e.IngredientName, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(qty, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
