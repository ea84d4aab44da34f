package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido de venta. Solo CONFIRMADO admite anulación.
const (
	SalesOrderStatusConfirmed = "CONFIRMADO"
	SalesOrderStatusDelivered = "ENTREGADO"
	SalesOrderStatusCancelled = "ANULADO"
)

// SalesOrder representa la cabecera de un pedido de venta.
type SalesOrder struct {
	ID           string
	Number       string
	CustomerName string
	Status       string
	Total        decimal.Decimal
	Lines        []*SalesOrderLine
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CancelledAt  *time.Time
}

// Cancellable indica si el pedido puede anularse.
func (o *SalesOrder) Cancellable() bool {
	return o.Status == SalesOrderStatusConfirmed
}

// SalesOrderLine es una línea fijada al momento de crear el pedido. La anulación usa
// exclusivamente estos datos; no vuelve a consultar el modo de venta del producto.
type SalesOrderLine struct {
	ID               string
	OrderID          string
	ProductID        string
	Quantity         int
	UnitMode         string
	UnitsSold        int // unidades entregadas (Quantity*UnitsPerPackage en modo PAQUETE)
	PackagesDeducted int // paquetes descontados de los lotes
	UnitPrice        decimal.Decimal
	Subtotal         decimal.Decimal
	Allocations      []BatchAllocation
}

// BatchAllocation registra cuánto se tomó de un lote.
type BatchAllocation struct {
	BatchID  string
	Packages int
	Units    int
}
