// Package report exporta el kardex a Excel.
package report

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

var _ inventory.MovementsExporter = (*ExcelExporter)(nil)

const sheetName = "Kardex"

var headers = []any{"Fecha", "Producto", "Dirección", "Tipo", "Modo", "Cantidad", "Paquetes", "Precio unitario", "Total", "Referencia", "Pedido"}

// ExcelExporter escribe movimientos con el StreamWriter de excelize (no carga la hoja en memoria).
type ExcelExporter struct{}

// NewExcelExporter construye el exportador.
func NewExcelExporter() *ExcelExporter { return &ExcelExporter{} }

// ExportMovements consume la secuencia y escribe un .xlsx en w.
func (e *ExcelExporter) ExportMovements(ctx context.Context, w io.Writer, movements iter.Seq2[*entity.Movement, error]) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("excel: stream writer: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("excel: estilo: %w", err)
	}
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("excel: encabezado: %w", err)
	}

	rowNo := 2
	for m, err := range movements {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNo)
		values := []any{
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			m.ProductID,
			m.Direction,
			m.Kind,
			m.UnitMode,
			m.Quantity,
			m.Packages,
			m.UnitPrice.InexactFloat64(),
			m.Total.InexactFloat64(),
			m.Reference,
			m.OrderID,
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("excel: fila %d: %w", rowNo, err)
		}
		rowNo++
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("excel: flush: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("excel: escribir: %w", err)
	}
	return nil
}
