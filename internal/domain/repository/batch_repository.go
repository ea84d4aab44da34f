package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes de compra.
// Los listados devuelven los lotes en orden FIFO (purchase_date, created_at, id).
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error)
	// ListByProductForUpdate bloquea los lotes del producto dentro de la transacción.
	ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Batch, error)
	UpdateQuantities(ctx context.Context, batch *entity.Batch) error
}
