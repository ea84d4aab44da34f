package repository

import (
	"context"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// BankAccountRepository define el puerto de persistencia para cuentas.
type BankAccountRepository interface {
	Create(ctx context.Context, account *entity.BankAccount) error
	GetByID(ctx context.Context, id string) (*entity.BankAccount, error)
	GetForUpdate(ctx context.Context, id string) (*entity.BankAccount, error)
	UpdateBalance(ctx context.Context, account *entity.BankAccount) error
}

// FinancialTransactionRepository define el puerto para transacciones financieras.
type FinancialTransactionRepository interface {
	Create(ctx context.Context, tx *entity.FinancialTransaction) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*entity.FinancialTransaction, error)
	ExistsForOrder(ctx context.Context, orderID, txType string) (bool, error)
}
