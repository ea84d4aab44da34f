// Package pdf genera el kardex de un producto en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + SKU      │  Fecha de generación         │
//	│  RESUMEN: Paquetes / Sueltas / Entradas / Salidas / Costo   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LOTES: Fecha | Recibido | Restante | Costo | Referencia     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MOVIMIENTOS: Fecha | Tipo | Modo | Cant. | Paq. | Total     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

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

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

var _ inventory.KardexPDFGenerator = (*KardexGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorIn      = &props.Color{Red: 0, Green: 110, Blue: 60}
	colorOut     = &props.Color{Red: 160, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// KardexGenerator implementa inventory.KardexPDFGenerator usando Maroto v2.
type KardexGenerator struct{}

// NewKardexGenerator construye el generador.
func NewKardexGenerator() *KardexGenerator { return &KardexGenerator{} }

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *KardexGenerator) GenerateKardexPDF(
	_ context.Context,
	product *entity.Product,
	batches []*entity.Batch,
	movements []*entity.Movement,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+product.SKU, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(product, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("LOTES (FIFO)"))
	m.AddRows(batchHeaderRow())
	m.AddRows(batchRows(batches)...)
	m.AddRows(line.NewRow(3))

	m.AddRows(sectionTitle("MOVIMIENTOS"))
	m.AddRows(movementHeaderRow())
	m.AddRows(movementRows(movements)...)
	if len(movements) == 0 {
		m.AddRows(text.NewRow(7, "Sin movimientos en el período.", props.Text{Size: 8, Color: colorGray, Top: 1}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(p *entity.Product, generatedAt time.Time) core.Row {
	return row.New(18).Add(
		col.New(8).Add(
			text.New(p.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary}),
			text.New(fmt.Sprintf("SKU: %s   |   %d unidades por paquete", p.SKU, p.UnitsPerPackage),
				props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
			text.New("Generado: "+generatedAt.Format("2006-01-02 15:04"),
				props.Text{Size: 8, Top: 6, Align: align.Right, Color: colorGray}),
		),
	)
}

func summaryRow(p *entity.Product) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 4, Align: align.Center}),
		)
	}
	return row.New(14).Add(
		cell("Paquetes", formatInt(p.PackageQuantity)),
		cell("Unidades sueltas", formatInt(p.UnitsAvailable)),
		cell("Total unidades", formatInt(p.TotalUnits())),
		cell("Entradas (paq.)", formatInt(p.TotalIn)),
		cell("Salidas (paq.)", formatInt(p.TotalOut)),
		cell("Costo prom.", "$"+formatDecimal(p.Cost)),
	)
}

func sectionTitle(s string) core.Row {
	return text.NewRow(7, s, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1})
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
	}))
}

func batchHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("Fecha compra", 2, align.Left),
		headerCell("Recibido", 2, align.Right),
		headerCell("Restante", 2, align.Right),
		headerCell("Costo", 2, align.Right),
		headerCell("Referencia", 4, align.Left),
	)
}

func batchRows(batches []*entity.Batch) []core.Row {
	result := make([]core.Row, 0, len(batches))
	for _, b := range batches {
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(b.PurchaseDate.Format("2006-01-02"), props.Text{Size: 8, Left: 1})),
			col.New(2).Add(text.New(formatInt(b.QuantityReceived), props.Text{Size: 8, Align: align.Right, Right: 1})),
			col.New(2).Add(text.New(formatInt(b.QuantityRemaining), props.Text{Size: 8, Align: align.Right, Right: 1})),
			col.New(2).Add(text.New("$"+formatDecimal(b.CostPrice), props.Text{Size: 8, Align: align.Right, Right: 1})),
			col.New(4).Add(text.New(nonEmpty(b.SourceReference, "-"), props.Text{Size: 8, Left: 1})),
		))
	}
	return result
}

func movementHeaderRow() core.Row {
	return row.New(6).Add(
		headerCell("Fecha", 3, align.Left),
		headerCell("Tipo", 2, align.Left),
		headerCell("Modo", 2, align.Left),
		headerCell("Cant.", 1, align.Right),
		headerCell("Paq.", 1, align.Right),
		headerCell("Total", 3, align.Right),
	)
}

func movementRows(movements []*entity.Movement) []core.Row {
	result := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		color := colorIn
		sign := "+"
		if mv.Direction == entity.DirectionOut {
			color = colorOut
			sign = "-"
		}
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(mv.CreatedAt.Format("2006-01-02 15:04"), props.Text{Size: 8, Left: 1})),
			col.New(2).Add(text.New(mv.Kind, props.Text{Size: 8, Color: color})),
			col.New(2).Add(text.New(mv.UnitMode, props.Text{Size: 8})),
			col.New(1).Add(text.New(formatInt(mv.Quantity), props.Text{Size: 8, Align: align.Right, Right: 1})),
			col.New(1).Add(text.New(sign+formatInt(mv.Packages), props.Text{Size: 8, Align: align.Right, Right: 1, Color: color})),
			col.New(3).Add(text.New("$"+formatDecimal(mv.Total), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatInt(n int) string {
	if n < 0 {
		return "-" + formatMoney(fmt.Sprint(-n))
	}
	return formatMoney(fmt.Sprint(n))
}

func formatDecimal(d decimal.Decimal) string {
	whole := d.Truncate(0)
	cents := d.Sub(whole).Abs().Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	s := formatMoney(whole.Abs().StringFixed(0))
	if d.IsNegative() {
		s = "-" + s
	}
	if cents == 0 {
		return s
	}
	return fmt.Sprintf("%s,%02d", s, cents)
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
