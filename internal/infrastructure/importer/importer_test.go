package importer_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/inventario-lotes/internal/infrastructure/importer"
)

// ── XML ─────────────────────────────────────────────────────────────────────

func TestParseXML_AtributosYElementos(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<lotes>
  <lote sku="GAS-500" fecha="2024-03-01" cantidad="3" costo="1200.50" precio="1800"/>
  <lote>
    <sku>AGUA-1L</sku>
    <fecha>2024-03-02</fecha>
    <cantidad>5</cantidad>
    <costo>800</costo>
  </lote>
</lotes>`
	rows, err := importer.ParseXML(bytes.NewBufferString(doc))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "GAS-500", rows[0].SKU)
	assert.Equal(t, 3, rows[0].Quantity)
	assert.True(t, rows[0].CostPrice.Equal(decimal.RequireFromString("1200.50")))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rows[0].PurchaseDate)

	assert.Equal(t, "AGUA-1L", rows[1].SKU)
	assert.Equal(t, 5, rows[1].Quantity)
	assert.True(t, rows[1].SellingPrice.IsZero())
	assert.Equal(t, 2, rows[1].Line)
}

func TestParseXML_ISO88591(t *testing.T) {
	utf := `<?xml version="1.0" encoding="ISO-8859-1"?>
<lotes><lote sku="AÑO-1" cantidad="2" costo="10"/></lotes>`
	latin, err := charmap.ISO8859_1.NewEncoder().String(utf)
	require.NoError(t, err)

	rows, err := importer.ParseXML(bytes.NewBufferString(latin))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AÑO-1", rows[0].SKU)
}

func TestParseXML_CantidadInvalida(t *testing.T) {
	doc := `<lotes><lote sku="X" cantidad="cero"/></lotes>`
	_, err := importer.ParseXML(bytes.NewBufferString(doc))
	var perr *importer.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "cantidad", perr.Field)
	assert.Equal(t, 1, perr.Line)
}

func TestParseXML_SinLotes(t *testing.T) {
	_, err := importer.ParseXML(bytes.NewBufferString(`<lotes/>`))
	assert.Error(t, err)
}

// ── Excel ───────────────────────────────────────────────────────────────────

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseExcel_ColumnasPorNombre(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Cantidad", "SKU", "Costo", "Fecha", "Precio"},
		{4, "GAS-500", "1000", "2024-01-15", "1500"},
		{},
		{1, "AGUA-1L", "700", "", ""},
	})
	rows, err := importer.ParseExcel(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2, "las filas vacías se ignoran")

	assert.Equal(t, "GAS-500", rows[0].SKU)
	assert.Equal(t, 4, rows[0].Quantity)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rows[0].PurchaseDate)
	assert.True(t, rows[1].PurchaseDate.IsZero())
	assert.Equal(t, 4, rows[1].Line)
}

func TestParseExcel_FaltaColumna(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"sku", "costo"},
		{"GAS-500", "10"},
	})
	_, err := importer.ParseExcel(buf)
	assert.ErrorContains(t, err, "cantidad")
}

// ── Parse ───────────────────────────────────────────────────────────────────

func TestParse_PorExtension(t *testing.T) {
	doc := `<lotes><lote sku="A" fecha="2024-03-01" cantidad="1" costo="10"/></lotes>`
	rows, err := importer.Parse("compras.XML", bytes.NewBufferString(doc))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = importer.Parse("compras.csv", bytes.NewBufferString("sku,cantidad"))
	assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
}
