package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// Receipt datos de un lote de compra entrante.
type Receipt struct {
	PurchaseDate    time.Time
	Quantity        int // paquetes
	CostPrice       decimal.Decimal
	SellingPrice    decimal.Decimal
	SourceReference string
}

// ReceiveBatch crea el lote, lo inserta en orden FIFO y actualiza el agregado
// (paquetes, entradas acumuladas y costo promedio ponderado).
func ReceiveBatch(product *entity.Product, ix *BatchIndex, r Receipt, now time.Time) (*entity.Batch, error) {
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if r.Quantity <= 0 || product.UnitsPerPackage < 1 {
		return nil, domain.ErrInvalidInput
	}
	if r.CostPrice.IsNegative() || r.SellingPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	purchaseDate := r.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = now
	}
	b := &entity.Batch{
		ID:                uuid.New().String(),
		ProductID:         product.ID,
		PurchaseDate:      purchaseDate,
		CostPrice:         r.CostPrice,
		SellingPrice:      r.SellingPrice,
		QuantityReceived:  r.Quantity,
		QuantityRemaining: r.Quantity,
		UnitsRemaining:    r.Quantity * product.UnitsPerPackage,
		SourceReference:   r.SourceReference,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	current := ix.Available()
	product.Cost = WeightedAverageCost(current, product.Cost, r.Quantity, r.CostPrice)
	ix.Insert(b)
	product.PackageQuantity = current + r.Quantity
	product.TotalIn += r.Quantity
	if !r.SellingPrice.IsZero() {
		product.Price = r.SellingPrice
	}
	product.Version++
	product.UpdatedAt = now
	return b, nil
}
