// Package importer lee archivos de lotes de compra (XML o Excel) y los convierte en filas
// para inventory.ImportUseCase.
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
)

// ErrUnsupportedFormat el archivo no es .xml ni .xlsx.
var ErrUnsupportedFormat = errors.New("importer: formato no soportado (use .xml o .xlsx)")

var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006", "2006-01-02 15:04:05"}

// ParseError error de formato en una fila del archivo.
type ParseError struct {
	Line  int
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fila %d: valor inválido en %s: %q", e.Line, e.Field, e.Value)
}

// Parse elige el lector según la extensión del archivo.
func Parse(filename string, r io.Reader) ([]inventory.ImportRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return ParseXML(r)
	case ".xlsx":
		return ParseExcel(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// rawRow valores textuales de una fila antes de validar.
type rawRow struct {
	line                                       int
	sku, date, quantity, costPrice, sellingPrice string
}

func (r rawRow) parse() (inventory.ImportRow, error) {
	row := inventory.ImportRow{Line: r.line, SKU: strings.TrimSpace(r.sku)}
	if row.SKU == "" {
		return row, &ParseError{Line: r.line, Field: "sku", Value: r.sku}
	}
	qty, err := strconv.Atoi(strings.TrimSpace(r.quantity))
	if err != nil || qty <= 0 {
		return row, &ParseError{Line: r.line, Field: "cantidad", Value: r.quantity}
	}
	row.Quantity = qty
	if row.CostPrice, err = parseDecimal(r.costPrice); err != nil {
		return row, &ParseError{Line: r.line, Field: "costo", Value: r.costPrice}
	}
	if row.SellingPrice, err = parseDecimal(r.sellingPrice); err != nil {
		return row, &ParseError{Line: r.line, Field: "precio", Value: r.sellingPrice}
	}
	if row.PurchaseDate, err = parseDate(r.date); err != nil {
		return row, &ParseError{Line: r.line, Field: "fecha", Value: r.date}
	}
	return row, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negativo")
	}
	return d, nil
}

// parseDate acepta fechas textuales o el número de serie de Excel. Vacío = fecha de recepción.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	return time.Time{}, fmt.Errorf("fecha %q", s)
}
