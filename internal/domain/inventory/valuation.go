package inventory

import (
	"github.com/shopspring/decimal"
)

// WeightedAverageCost calcula el costo promedio ponderado tras una entrada:
// ((stock * costoActual) + (cantEntrada * costoEntrada)) / (stock + cantEntrada).
func WeightedAverageCost(stock int, currentCost decimal.Decimal, incoming int, incomingCost decimal.Decimal) decimal.Decimal {
	total := stock + incoming
	if total <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(int64(stock)).Mul(currentCost).
		Add(decimal.NewFromInt(int64(incoming)).Mul(incomingCost))
	return num.Div(decimal.NewFromInt(int64(total))).Round(4)
}

// StockValue valoriza el stock restante al costo de cada lote (valoración FIFO).
func StockValue(ix *BatchIndex) decimal.Decimal {
	total := decimal.Zero
	for _, b := range ix.Batches() {
		total = total.Add(decimal.NewFromInt(int64(b.QuantityRemaining)).Mul(b.CostPrice))
	}
	return total
}

// AllocationCost costo de los paquetes tomados según el costo de cada lote.
func AllocationCost(ix *BatchIndex, plan *AllocationPlan) decimal.Decimal {
	total := decimal.Zero
	for _, a := range plan.Allocations {
		if b := ix.Get(a.BatchID); b != nil {
			total = total.Add(decimal.NewFromInt(int64(a.Packages)).Mul(b.CostPrice))
		}
	}
	return total
}
