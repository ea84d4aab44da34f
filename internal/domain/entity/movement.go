package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento.
const (
	DirectionIn  = "ENTRADA"
	DirectionOut = "SALIDA"
)

// Origen del movimiento.
const (
	MovementKindPurchase = "COMPRA"    // recepción de lote
	MovementKindSale     = "VENTA"     // asignación de stock
	MovementKindReversal = "ANULACION" // reversión de una venta
)

// Movement es un hecho inmutable del kardex. Nunca se edita ni se elimina:
// una anulación inserta un movimiento compensatorio.
type Movement struct {
	ID        string
	ProductID string
	Direction string
	Kind      string
	UnitMode  string
	Quantity  int // en la unidad de UnitMode
	Packages  int // paquetes que entraron o salieron de los lotes
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	Reference string
	OrderID   string
	CreatedAt time.Time
}
