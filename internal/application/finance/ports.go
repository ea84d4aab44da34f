package finance

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// Repos repositorios financieros atados a una transacción.
type Repos struct {
	Accounts     repository.BankAccountRepository
	Transactions repository.FinancialTransactionRepository
}

// TxRunner ejecuta fn en una transacción propia, independiente de la de inventario.
type TxRunner interface {
	RunFinance(ctx context.Context, fn func(r Repos) error) error
}
