package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Update solo escribe datos de catálogo; los contadores de stock se escriben con
// UpdateStock, que usa Version como token de concurrencia optimista.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpdateStock persiste los contadores si la versión almacenada es product.Version-1;
	// si no, devuelve domain.ErrConcurrencyConflict.
	UpdateStock(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
