// Package pdf genera el reporte de discrepancias de un inventario finalizado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: N° Inventario + Tipo  │  Bodega + Fecha de cierre   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Esperado | Leído | Recibido | Diferencia  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: líneas con diferencia / faltante / sobrante        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa inventory.ReportRenderer usando Maroto v2.
type MarotoPDFGenerator struct{}

var _ inventory.ReportRenderer = (*MarotoPDFGenerator)(nil)

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// RenderDiscrepancies genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderDiscrepancies(inv *entity.Inventory, warehouse string, lines []inventory.ReportLine) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Discrepancias "+inv.Number, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv, warehouse))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(4))

	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(totalsRow(lines))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: número y tipo a la izquierda; bodega y fecha de cierre a la derecha.
func headerRow(inv *entity.Inventory, warehouse string) core.Row {
	closed := "-"
	if inv.FinalizedAt != nil {
		closed = inv.FinalizedAt.UTC().Format("2006-01-02 15:04 MST")
	}
	return row.New(22).Add(
		col.New(7).Add(
			text.New("REPORTE DE DISCREPANCIAS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
			}),
			text.New("Inventario "+inv.Number, props.Text{Size: 10, Top: 10}),
			text.New("Tipo: "+kindLabel(inv.Kind), props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Bodega: "+nonEmpty(warehouse, inv.WarehouseID), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 3,
			}),
			text.New("Cerrado: "+closed, props.Text{Size: 8, Align: align.Right, Top: 10}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla con fondo del color primario.
func tableHeaderRow() core.Row {
	header := func(s string, a align.Type) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 1.5,
		})
	}
	return row.New(7).Add(
		col.New(4).Add(header("Producto", align.Left)),
		col.New(2).Add(header("Esperado", align.Right)),
		col.New(2).Add(header("Leído", align.Right)),
		col.New(2).Add(header("Recibido", align.Right)),
		col.New(2).Add(header("Diferencia", align.Right)),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// itemRows: una fila por línea; las no esperadas y las diferencias se resaltan.
func itemRows(lines []inventory.ReportLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		it := l.Item
		name := l.ProductName
		if it.Unexpected {
			name += " (no esperado)"
		}
		received := "-"
		if it.ReceivedQuantity != nil {
			received = quantity(*it.ReceivedQuantity)
		}
		diff := decimal.Zero
		if it.Discrepancy != nil {
			diff = *it.Discrepancy
		}
		diffStyle := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if !diff.IsZero() {
			diffStyle.Style = fontstyle.Bold
			diffStyle.Color = colorAlert
		}
		cell := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		result = append(result, row.New(6).Add(
			col.New(4).Add(text.New(name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(quantity(it.ExpectedQuantity), cell)),
			col.New(2).Add(text.New(quantity(it.ScannedQuantity), cell)),
			col.New(2).Add(text.New(received, cell)),
			col.New(2).Add(text.New(signed(diff), diffStyle)),
		))
	}
	return result
}

// totalsRow: resumen de faltantes y sobrantes.
func totalsRow(lines []inventory.ReportLine) core.Row {
	var (
		withDiff  int
		shortage  = decimal.Zero
		surplus   = decimal.Zero
		unexpects int
	)
	for _, l := range lines {
		if l.Item.Unexpected {
			unexpects++
		}
		if l.Item.Discrepancy == nil || l.Item.Discrepancy.IsZero() {
			continue
		}
		withDiff++
		if l.Item.Discrepancy.IsNegative() {
			shortage = shortage.Add(l.Item.Discrepancy.Neg())
		} else {
			surplus = surplus.Add(*l.Item.Discrepancy)
		}
	}

	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(26).Add(
		col.New(6), // espacio izquierdo
		col.New(4).Add(
			label("Líneas con diferencia:"),
			label("No esperadas:"),
			label("Faltante:"),
			label("Sobrante:"),
		),
		col.New(2).Add(
			value(fmt.Sprintf("%d de %d", withDiff, len(lines))),
			value(fmt.Sprintf("%d", unexpects)),
			value(quantity(shortage)),
			value(quantity(surplus)),
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

func kindLabel(kind string) string {
	if kind == entity.InventoryKindTransaction {
		return "recepción"
	}
	return "conteo físico"
}

// quantity sin decimales cuando la cantidad es entera. Ej: "12", "2.50".
func quantity(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + quantity(d)
	}
	return quantity(d)
}
