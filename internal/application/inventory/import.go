package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// ImportRow fila de un archivo de lotes de compra (XML o Excel).
type ImportRow struct {
	Line         int
	SKU          string
	PurchaseDate time.Time
	Quantity     int
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
}

// ImportRowError error de una fila concreta.
type ImportRowError struct {
	Line int    `json:"line"`
	SKU  string `json:"sku"`
	Err  string `json:"error"`
}

// ImportReport resultado de una importación.
type ImportReport struct {
	Source   string           `json:"source"`
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	BatchIDs []string         `json:"batch_ids"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportUseCase recibe lotes en bloque. Cada fila es una recepción independiente:
// una fila inválida no revierte las anteriores.
type ImportUseCase struct {
	engine   *Engine
	products repository.ProductRepository
	log      zerolog.Logger
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(engine *Engine, products repository.ProductRepository, log zerolog.Logger) *ImportUseCase {
	return &ImportUseCase{engine: engine, products: products, log: log}
}

// Import resuelve cada SKU y registra el lote con la referencia del archivo.
func (uc *ImportUseCase) Import(ctx context.Context, source string, rows []ImportRow) (*ImportReport, error) {
	if len(rows) == 0 {
		return nil, errors.New("import: el archivo no contiene filas")
	}
	report := &ImportReport{Source: source, BatchIDs: make([]string, 0, len(rows))}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		batchID, err := uc.importRow(ctx, source, row)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, ImportRowError{Line: row.Line, SKU: row.SKU, Err: err.Error()})
			continue
		}
		report.Imported++
		report.BatchIDs = append(report.BatchIDs, batchID)
	}
	uc.log.Info().
		Str("source", source).
		Int("imported", report.Imported).
		Int("failed", report.Failed).
		Msg("importación de lotes finalizada")
	return report, nil
}

func (uc *ImportUseCase) importRow(ctx context.Context, source string, row ImportRow) (string, error) {
	sku := strings.TrimSpace(row.SKU)
	if sku == "" {
		return "", fmt.Errorf("sku vacío")
	}
	product, err := uc.products.GetBySKU(ctx, sku)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", fmt.Errorf("producto %s no existe", sku)
	}
	ref := source
	if row.Line > 0 {
		ref = fmt.Sprintf("%s#%d", source, row.Line)
	}
	batch, err := uc.engine.Receive(ctx, ReceiveInput{
		ProductID:       product.ID,
		PurchaseDate:    row.PurchaseDate,
		Quantity:        row.Quantity,
		CostPrice:       row.CostPrice,
		SellingPrice:    row.SellingPrice,
		SourceReference: ref,
	})
	if err != nil {
		return "", err
	}
	return batch.ID, nil
}
