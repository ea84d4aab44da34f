package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// SalesOrderRepository define el puerto de persistencia para pedidos y sus líneas fijadas.
type SalesOrderRepository interface {
	// Create guarda solo la cabecera. Va antes de asignar: los movimientos referencian el pedido.
	Create(ctx context.Context, order *entity.SalesOrder) error
	// AddLines guarda las líneas fijadas con sus asignaciones y el total de la cabecera.
	AddLines(ctx context.Context, order *entity.SalesOrder) error
	GetByID(ctx context.Context, id string) (*entity.SalesOrder, error)
	// GetForUpdate bloquea la cabecera del pedido (para anular o entregar).
	GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error)
	UpdateStatus(ctx context.Context, order *entity.SalesOrder) error
}
