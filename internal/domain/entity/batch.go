package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote de compra de un producto. Los lotes nunca se eliminan:
// solo se descuentan (venta) o se reponen (anulación).
type Batch struct {
	ID                string
	ProductID         string
	PurchaseDate      time.Time // clave de orden FIFO
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	QuantityReceived  int // paquetes recibidos
	QuantityRemaining int // paquetes disponibles, 0 <= QuantityRemaining <= QuantityReceived
	UnitsRemaining    int // unidades contenidas en los paquetes disponibles
	SourceReference   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Capacity devuelve cuántos paquetes se le pueden devolver sin superar lo recibido.
func (b *Batch) Capacity() int {
	return b.QuantityReceived - b.QuantityRemaining
}

// Exhausted indica si el lote ya no tiene paquetes.
func (b *Batch) Exhausted() bool {
	return b.QuantityRemaining == 0
}
