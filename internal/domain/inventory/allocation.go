// Package inventory contiene la lógica pura del motor de lotes: planificación FIFO de
// salidas, reposición en anulaciones y valorización. No accede a la base de datos;
// el caso de uso de aplicación carga producto y lotes, planifica, aplica y persiste
// dentro de una misma transacción.
package inventory

import (
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// AllocationPlan describe una salida ya validada. Se calcula sin mutar nada, de modo
// que una salida inviable deja producto y lotes intactos.
type AllocationPlan struct {
	ProductID          string
	UnitMode           string
	Requested          int
	PackagesToDeduct   int
	UnitsSold          int
	NewPackageQuantity int
	NewUnitsAvailable  int
	Allocations        []entity.BatchAllocation
}

// PlanAllocation valida la solicitud y calcula qué descontar de cada lote.
//
// El stock en paquetes se toma de la suma de lotes (fuente autoritativa). En modo UNIDAD
// las unidades sueltas se derivan siempre del resto de paquetes:
// después = sueltas + paquetes*upp - solicitado; paquetes' = después / upp; sueltas' = después % upp.
//
// En modo PAQUETE las sueltas no cambian. No se recalculan como paquetes*upp porque la
// factibilidad por unidad ya suma paquetes*upp aparte y esas unidades se contarían dos veces.
func PlanAllocation(product *entity.Product, ix *BatchIndex, quantity int, unitMode string) (*AllocationPlan, error) {
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if quantity <= 0 || product.UnitsPerPackage < 1 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidUnitMode(unitMode) {
		return nil, domain.ErrInvalidUnitMode
	}
	if unitMode == entity.UnitModeUnit && !product.SellByUnit {
		return nil, domain.ErrInvalidUnitMode
	}

	upp := product.UnitsPerPackage
	packages := ix.Available()
	plan := &AllocationPlan{
		ProductID: product.ID,
		UnitMode:  unitMode,
		Requested: quantity,
	}

	switch unitMode {
	case entity.UnitModePackage:
		if quantity > packages {
			return nil, &domain.InsufficientStockError{
				ProductID: product.ID, Mode: unitMode, Requested: quantity, Available: packages,
			}
		}
		plan.PackagesToDeduct = quantity
		plan.UnitsSold = quantity * upp
		plan.NewPackageQuantity = packages - quantity
		plan.NewUnitsAvailable = product.UnitsAvailable
	case entity.UnitModeUnit:
		total := product.UnitsAvailable + packages*upp
		if quantity > total {
			return nil, &domain.InsufficientStockError{
				ProductID: product.ID, Mode: unitMode, Requested: quantity, Available: total,
			}
		}
		after := total - quantity
		newPackages := after / upp
		remainder := after % upp
		// Sueltas heredadas >= upp no se vuelven a empaquetar.
		if newPackages > packages {
			newPackages = packages
			remainder = after - packages*upp
		}
		plan.PackagesToDeduct = packages - newPackages
		plan.UnitsSold = quantity
		plan.NewPackageQuantity = newPackages
		plan.NewUnitsAvailable = remainder
	}

	left := plan.PackagesToDeduct
	for _, b := range ix.Batches() {
		if left == 0 {
			break
		}
		if b.QuantityRemaining == 0 {
			continue
		}
		take := min(left, b.QuantityRemaining)
		plan.Allocations = append(plan.Allocations, entity.BatchAllocation{
			BatchID:  b.ID,
			Packages: take,
			Units:    take * upp,
		})
		left -= take
	}
	if left > 0 {
		// La suma de lotes ya se validó; solo ocurre si los lotes cambiaron a mitad del cálculo.
		return nil, domain.ErrConcurrencyConflict
	}
	return plan, nil
}

// Apply aplica el plan sobre los lotes del índice y el agregado del producto.
// Devuelve los lotes modificados, en orden FIFO.
func (p *AllocationPlan) Apply(product *entity.Product, ix *BatchIndex, now time.Time) []*entity.Batch {
	touched := make([]*entity.Batch, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		b := ix.Get(a.BatchID)
		if b == nil {
			continue
		}
		b.QuantityRemaining -= a.Packages
		b.UnitsRemaining -= a.Units
		if b.UnitsRemaining < 0 {
			b.UnitsRemaining = 0
		}
		b.UpdatedAt = now
		touched = append(touched, b)
	}
	product.PackageQuantity = p.NewPackageQuantity
	product.UnitsAvailable = p.NewUnitsAvailable
	product.TotalOut += p.PackagesToDeduct
	product.Version++
	product.UpdatedAt = now
	return touched
}
