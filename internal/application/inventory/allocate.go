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

// AllocateInput solicitud de salida de stock.
type AllocateInput struct {
	ProductID string
	Quantity  int
	UnitMode  string
	UnitPrice decimal.Decimal // cero = precio de lista según el modo
	Reference string
	OrderID   string
}

// AllocationResult resultado de una salida: lotes tocados y movimiento registrado.
type AllocationResult struct {
	ProductID        string
	UnitMode         string
	Quantity         int
	UnitsSold        int
	PackagesDeducted int
	UnitPrice        decimal.Decimal
	Cost             decimal.Decimal // costo de los paquetes tomados, al costo de cada lote
	Allocations      []entity.BatchAllocation
	Movement         *entity.Movement
}

// Allocate descuenta stock FIFO en su propia transacción.
func (e *Engine) Allocate(ctx context.Context, in AllocateInput) (*AllocationResult, error) {
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *AllocationResult
	err := e.Execute(ctx, []string{in.ProductID}, func(r Repos) error {
		res, err := e.AllocateInTx(ctx, r, in)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		e.log.Info().Err(err).
			Str("product_id", in.ProductID).
			Int("quantity", in.Quantity).
			Str("unit_mode", in.UnitMode).
			Msg("salida de stock rechazada")
		return nil, err
	}
	return result, nil
}

// AllocateInTx ejecuta la salida usando los repositorios del llamador (misma transacción).
// Bloquea el producto y sus lotes, valida, descuenta FIFO, actualiza el agregado y
// registra un movimiento SALIDA. Si retorna error, el llamador debe hacer rollback.
func (e *Engine) AllocateInTx(ctx context.Context, r Repos, in AllocateInput) (*AllocationResult, error) {
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

	plan, err := inventory.PlanAllocation(product, ix, in.Quantity, in.UnitMode)
	if err != nil {
		return nil, err
	}

	now := e.now()
	touched := plan.Apply(product, ix, now)
	for _, b := range touched {
		if err := r.Batches.UpdateQuantities(ctx, b); err != nil {
			return nil, err
		}
	}
	if err := r.Products.UpdateStock(ctx, product); err != nil {
		return nil, err
	}

	unitPrice := in.UnitPrice
	if unitPrice.IsZero() {
		unitPrice = listPrice(product, in.UnitMode)
	}
	reference := in.Reference
	if reference == "" {
		reference = fmt.Sprintf("salida %s", product.SKU)
	}
	mov := &entity.Movement{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Direction: entity.DirectionOut,
		Kind:      entity.MovementKindSale,
		UnitMode:  in.UnitMode,
		Quantity:  in.Quantity,
		Packages:  plan.PackagesToDeduct,
		UnitPrice: unitPrice,
		Total:     unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		Reference: reference,
		OrderID:   in.OrderID,
		CreatedAt: now,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}

	e.log.Debug().
		Str("product_id", product.ID).
		Str("unit_mode", in.UnitMode).
		Int("quantity", in.Quantity).
		Int("packages", plan.PackagesToDeduct).
		Int("units_available", product.UnitsAvailable).
		Msg("salida de stock aplicada")

	return &AllocationResult{
		ProductID:        product.ID,
		UnitMode:         in.UnitMode,
		Quantity:         in.Quantity,
		UnitsSold:        plan.UnitsSold,
		PackagesDeducted: plan.PackagesToDeduct,
		UnitPrice:        unitPrice,
		Cost:             inventory.AllocationCost(ix, plan),
		Allocations:      plan.Allocations,
		Movement:         mov,
	}, nil
}

func listPrice(p *entity.Product, unitMode string) decimal.Decimal {
	if unitMode == entity.UnitModeUnit {
		if !p.UnitPrice.IsZero() {
			return p.UnitPrice
		}
		if p.UnitsPerPackage > 0 {
			return p.Price.Div(decimal.NewFromInt(int64(p.UnitsPerPackage))).Round(2)
		}
	}
	return p.Price
}
