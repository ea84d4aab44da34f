package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de venta de una línea.
const (
	UnitModePackage = "PAQUETE" // paquete completo
	UnitModeUnit    = "UNIDAD"  // unidad suelta extraída de un paquete
)

// ValidUnitMode indica si el modo es PAQUETE o UNIDAD.
func ValidUnitMode(mode string) bool {
	return mode == UnitModePackage || mode == UnitModeUnit
}

// Product representa un producto del catálogo junto con sus contadores de stock.
// PackageQuantity es la suma de QuantityRemaining de sus lotes; UnitsAvailable son las
// unidades sueltas de paquetes ya abiertos (0 <= UnitsAvailable < UnitsPerPackage).
// Los campos de stock solo los modifica el motor de inventario.
type Product struct {
	ID              string
	SKU             string // código único
	Name            string
	Description     string
	Price           decimal.Decimal // precio de venta por paquete
	UnitPrice       decimal.Decimal // precio de venta por unidad (si SellByUnit)
	Cost            decimal.Decimal // costo promedio ponderado de compra
	UnitsPerPackage int
	SellByUnit      bool
	PackageQuantity int
	UnitsAvailable  int
	TotalIn         int // paquetes recibidos acumulados
	TotalOut        int // paquetes consumidos acumulados
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TotalUnits devuelve las unidades vendibles: sueltas más las contenidas en paquetes cerrados.
func (p *Product) TotalUnits() int {
	return p.UnitsAvailable + p.PackageQuantity*p.UnitsPerPackage
}

// StockSnapshot copia los contadores de stock (útil para comparar antes/después).
type StockSnapshot struct {
	PackageQuantity int
	UnitsAvailable  int
	TotalIn         int
	TotalOut        int
}

// Snapshot devuelve los contadores actuales.
func (p *Product) Snapshot() StockSnapshot {
	return StockSnapshot{
		PackageQuantity: p.PackageQuantity,
		UnitsAvailable:  p.UnitsAvailable,
		TotalIn:         p.TotalIn,
		TotalOut:        p.TotalOut,
	}
}
