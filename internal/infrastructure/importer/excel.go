package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
)

var excelColumns = []string{"sku", "fecha", "cantidad", "costo", "precio"}

// ParseExcel lee la primera hoja de un .xlsx. La primera fila es el encabezado; las
// columnas se ubican por nombre (sku, fecha, cantidad, costo, precio) en cualquier orden.
func ParseExcel(r io.Reader) ([]inventory.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("abrir Excel: sin hojas")
	}
	all, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheets[0], err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("leer hoja %s: sin filas de datos", sheets[0])
	}

	idx := make(map[string]int, len(excelColumns))
	for i, h := range all[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range []string{"sku", "cantidad"} {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("leer hoja %s: falta la columna %s", sheets[0], c)
		}
	}
	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rows []inventory.ImportRow
	for n, row := range all[1:] {
		if blank(row) {
			continue
		}
		parsed, err := rawRow{
			line:         n + 2,
			sku:          cell(row, "sku"),
			date:         cell(row, "fecha"),
			quantity:     cell(row, "cantidad"),
			costPrice:    cell(row, "costo"),
			sellingPrice: cell(row, "precio"),
		}.parse()
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed)
	}
	return rows, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
