package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/inventory"
)

// Reverse repone en su propia transacción las líneas fijadas de un pedido anulado.
func (e *Engine) Reverse(ctx context.Context, lines []*entity.SalesOrderLine, reference string) error {
	if len(lines) == 0 {
		return domain.ErrInvalidInput
	}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return e.Execute(ctx, ids, func(r Repos) error {
		return e.ReverseInTx(ctx, r, lines, reference)
	})
}

// ReverseInTx repone cada línea con los datos fijados al crear el pedido (nunca con el
// estado actual del producto) y registra un movimiento ENTRADA/ANULACION por línea.
func (e *Engine) ReverseInTx(ctx context.Context, r Repos, lines []*entity.SalesOrderLine, reference string) error {
	now := e.now()
	for _, line := range lines {
		product, err := r.Products.GetForUpdate(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		batches, err := r.Batches.ListByProductForUpdate(ctx, line.ProductID)
		if err != nil {
			return err
		}
		ix := inventory.NewBatchIndex(batches)

		plan, err := inventory.PlanReversal(product, ix, line)
		if err != nil {
			return err
		}
		for _, b := range plan.Apply(product, ix, now) {
			if err := r.Batches.UpdateQuantities(ctx, b); err != nil {
				return err
			}
		}
		if err := r.Products.UpdateStock(ctx, product); err != nil {
			return err
		}

		ref := reference
		if ref == "" {
			ref = fmt.Sprintf("anulación %s", product.SKU)
		}
		mov := &entity.Movement{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Direction: entity.DirectionIn,
			Kind:      entity.MovementKindReversal,
			UnitMode:  line.UnitMode,
			Quantity:  line.Quantity,
			Packages:  plan.PackagesReturned,
			UnitPrice: line.UnitPrice,
			Total:     line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
			Reference: ref,
			OrderID:   line.OrderID,
			CreatedAt: now,
		}
		if err := r.Movements.Create(ctx, mov); err != nil {
			return err
		}
		e.log.Debug().
			Str("product_id", product.ID).
			Str("order_id", line.OrderID).
			Int("packages", plan.PackagesReturned).
			Msg("línea repuesta")
	}
	return nil
}
