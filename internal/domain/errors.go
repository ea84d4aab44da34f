package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidUnitMode     = errors.New("modo de venta inválido para el producto")
	ErrOrderNotCancellable = errors.New("el pedido no se puede anular en su estado actual")
	ErrConcurrencyConflict = errors.New("el stock fue modificado por otra operación")
	ErrBatchNotFound       = errors.New("no hay lote donde devolver la cantidad")
)

// InsufficientStockError detalla una falta de stock. Mode distingue paquetes de unidades
// para que el llamador pueda mostrar un mensaje específico.
type InsufficientStockError struct {
	ProductID string
	Mode      string // PAQUETE | UNIDAD
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %d %s", e.Available, e.UnitLabel())
}

// UnitLabel devuelve "paquetes" o "unidades" según el modo.
func (e *InsufficientStockError) UnitLabel() string {
	if e.Mode == "UNIDAD" {
		return "unidades"
	}
	return "paquetes"
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
