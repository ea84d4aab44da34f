package inventory

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// maxReportRows tope de movimientos por reporte.
const maxReportRows = 5000

// KardexPDFGenerator dibuja el kardex de un producto.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, product *entity.Product, batches []*entity.Batch, movements []*entity.Movement, generatedAt time.Time) ([]byte, error)
}

// MovementsExporter escribe movimientos en una hoja de cálculo, consumiéndolos a medida que llegan.
type MovementsExporter interface {
	ExportMovements(ctx context.Context, w io.Writer, movements iter.Seq2[*entity.Movement, error]) error
}

// ReportUseCase reportes del kardex alimentados por el Ledger.
type ReportUseCase struct {
	ledger   *Ledger
	products repository.ProductRepository
	batches  repository.BatchRepository
	pdf      KardexPDFGenerator
	xlsx     MovementsExporter
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(ledger *Ledger, products repository.ProductRepository, batches repository.BatchRepository, pdf KardexPDFGenerator, xlsx MovementsExporter) *ReportUseCase {
	return &ReportUseCase{ledger: ledger, products: products, batches: batches, pdf: pdf, xlsx: xlsx}
}

// KardexPDF genera el PDF del kardex de un producto (más recientes primero).
func (uc *ReportUseCase) KardexPDF(ctx context.Context, productID string, from, to *time.Time) ([]byte, string, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: obtener producto: %w", err)
	}
	if product == nil {
		return nil, "", domain.ErrProductNotFound
	}
	batches, err := uc.batches.ListByProduct(ctx, productID)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: obtener lotes: %w", err)
	}
	movements := make([]*entity.Movement, 0, 64)
	for m, err := range uc.ledger.Movements(ctx, repository.MovementFilter{ProductID: productID, From: from, To: to, Limit: maxLedgerPage}) {
		if err != nil {
			return nil, "", err
		}
		movements = append(movements, m)
		if len(movements) >= maxReportRows {
			break
		}
	}
	pdf, err := uc.pdf.GenerateKardexPDF(ctx, product, batches, movements, time.Now())
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("kardex_%s.pdf", product.SKU), nil
}

// ExportMovements escribe en w el kardex filtrado como .xlsx.
func (uc *ReportUseCase) ExportMovements(ctx context.Context, w io.Writer, filter repository.MovementFilter) error {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return domain.ErrInvalidInput
	}
	filter.Limit = maxLedgerPage
	limited := func(yield func(*entity.Movement, error) bool) {
		n := 0
		for m, err := range uc.ledger.Movements(ctx, filter) {
			if !yield(m, err) || err != nil {
				return
			}
			n++
			if n >= maxReportRows {
				return
			}
		}
	}
	return uc.xlsx.ExportMovements(ctx, w, limited)
}
