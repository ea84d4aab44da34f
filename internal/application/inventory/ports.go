package inventory

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Products  repository.ProductRepository
	Batches   repository.BatchRepository
	Movements repository.MovementRepository
	Orders    repository.SalesOrderRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn retorna nil; Rollback en cualquier otro caso. Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Locker serializa operaciones por producto dentro del proceso o entre réplicas.
// Lock adquiere todas las llaves (en orden) o ninguna.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}
