package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

// ReceiveInput entrada de un lote de compra.
type ReceiveInput struct {
	ProductID       string
	PurchaseDate    time.Time
	Quantity        int // paquetes
	CostPrice       decimal.Decimal
	SellingPrice    decimal.Decimal
	SourceReference string
}

// Receive crea un lote y registra la ENTRADA en el kardex.
func (e *Engine) Receive(ctx context.Context, in ReceiveInput) (*entity.Batch, error) {
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	var batch *entity.Batch
	err := e.Execute(ctx, []string{in.ProductID}, func(r Repos) error {
		b, err := e.ReceiveInTx(ctx, r, in)
		if err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().
		Str("product_id", in.ProductID).
		Str("batch_id", batch.ID).
		Int("packages", batch.QuantityReceived).
		Str("source", batch.SourceReference).
		Msg("lote recibido")
	return batch, nil
}

// ReceiveInTx crea el lote usando los repositorios del llamador.
func (e *Engine) ReceiveInTx(ctx context.Context, r Repos, in ReceiveInput) (*entity.Batch, error) {
	product, err := r.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	batches, err := r.Batches.ListByProductForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	ix := inventory.NewBatchIndex(batches)

	now := e.now()
	batch, err := inventory.ReceiveBatch(product, ix, inventory.Receipt{
		PurchaseDate:    in.PurchaseDate,
		Quantity:        in.Quantity,
		CostPrice:       in.CostPrice,
		SellingPrice:    in.SellingPrice,
		SourceReference: in.SourceReference,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := r.Batches.Create(ctx, batch); err != nil {
		return nil, err
	}
	if err := r.Products.UpdateStock(ctx, product); err != nil {
		return nil, err
	}
	ref := in.SourceReference
	if ref == "" {
		ref = fmt.Sprintf("compra %s", product.SKU)
	}
	mov := &entity.Movement{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Direction: entity.DirectionIn,
		Kind:      entity.MovementKindPurchase,
		UnitMode:  entity.UnitModePackage,
		Quantity:  in.Quantity,
		Packages:  in.Quantity,
		UnitPrice: in.CostPrice,
		Total:     in.CostPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Reference: ref,
		CreatedAt: now,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return batch, nil
}
