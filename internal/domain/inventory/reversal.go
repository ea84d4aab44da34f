package inventory

import (
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// ReversalPlan describe la reposición de una línea anulada.
type ReversalPlan struct {
	ProductID          string
	PackagesReturned   int
	UnitsReturned      int
	NewPackageQuantity int
	NewUnitsAvailable  int
	Returns            []entity.BatchAllocation
}

// PlanReversal calcula la devolución de una línea fijada. Los paquetes vuelven al lote
// más antiguo primero, hasta completar lo recibido por cada lote, y luego al siguiente.
//
// Modo PAQUETE: vuelven Quantity paquetes; las unidades sueltas no cambian.
// Modo UNIDAD: las unidades vendidas se suman a las sueltas y se reempaquetan los
// paquetes completos que quepan en los lotes; el resto queda como sueltas.
func PlanReversal(product *entity.Product, ix *BatchIndex, line *entity.SalesOrderLine) (*ReversalPlan, error) {
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if line == nil || line.Quantity <= 0 || product.UnitsPerPackage < 1 {
		return nil, domain.ErrInvalidInput
	}
	upp := product.UnitsPerPackage
	packages := ix.Available()
	plan := &ReversalPlan{ProductID: product.ID}

	switch line.UnitMode {
	case entity.UnitModePackage:
		if line.Quantity > ix.Capacity() {
			return nil, domain.ErrBatchNotFound
		}
		plan.PackagesReturned = line.Quantity
		plan.UnitsReturned = line.Quantity * upp
		plan.NewUnitsAvailable = product.UnitsAvailable
	case entity.UnitModeUnit:
		loose := product.UnitsAvailable + line.UnitsSold
		back := min(loose/upp, ix.Capacity())
		plan.PackagesReturned = back
		plan.UnitsReturned = line.UnitsSold
		plan.NewUnitsAvailable = loose - back*upp
	default:
		return nil, domain.ErrInvalidUnitMode
	}
	plan.NewPackageQuantity = packages + plan.PackagesReturned

	left := plan.PackagesReturned
	for _, b := range ix.Batches() {
		if left == 0 {
			break
		}
		room := b.Capacity()
		if room <= 0 {
			continue
		}
		put := min(left, room)
		plan.Returns = append(plan.Returns, entity.BatchAllocation{
			BatchID:  b.ID,
			Packages: put,
			Units:    put * upp,
		})
		left -= put
	}
	if left > 0 {
		return nil, domain.ErrBatchNotFound
	}
	return plan, nil
}

// Apply repone los lotes y descuenta TotalOut en los paquetes devueltos.
func (p *ReversalPlan) Apply(product *entity.Product, ix *BatchIndex, now time.Time) []*entity.Batch {
	touched := make([]*entity.Batch, 0, len(p.Returns))
	for _, r := range p.Returns {
		b := ix.Get(r.BatchID)
		if b == nil {
			continue
		}
		b.QuantityRemaining += r.Packages
		b.UnitsRemaining += r.Units
		b.UpdatedAt = now
		touched = append(touched, b)
	}
	product.PackageQuantity = p.NewPackageQuantity
	product.UnitsAvailable = p.NewUnitsAvailable
	product.TotalOut -= p.PackagesReturned
	if product.TotalOut < 0 {
		product.TotalOut = 0
	}
	product.Version++
	product.UpdatedAt = now
	return touched
}
