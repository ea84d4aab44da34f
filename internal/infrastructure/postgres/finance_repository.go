package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var (
	_ repository.BankAccountRepository          = (*BankAccountRepo)(nil)
	_ repository.FinancialTransactionRepository = (*FinancialTransactionRepo)(nil)
)

// BankAccountRepo cuentas sobre PostgreSQL.
type BankAccountRepo struct {
	q Querier
}

// NewBankAccountRepository construye el adaptador. Pasar pool o tx.
func NewBankAccountRepository(q Querier) *BankAccountRepo {
	return &BankAccountRepo{q: q}
}

// Create inserta una cuenta.
func (r *BankAccountRepo) Create(ctx context.Context, a *entity.BankAccount) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO bank_accounts (id, name, number, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Name, a.Number, a.Balance, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert bank account", err)
	}
	return nil
}

// GetByID obtiene una cuenta.
func (r *BankAccountRepo) GetByID(ctx context.Context, id string) (*entity.BankAccount, error) {
	return r.get(ctx, `SELECT id, name, number, balance, created_at, updated_at FROM bank_accounts WHERE id = $1`, id)
}

// GetForUpdate obtiene la cuenta bloqueando la fila.
func (r *BankAccountRepo) GetForUpdate(ctx context.Context, id string) (*entity.BankAccount, error) {
	return r.get(ctx, `SELECT id, name, number, balance, created_at, updated_at FROM bank_accounts WHERE id = $1 FOR UPDATE`, id)
}

func (r *BankAccountRepo) get(ctx context.Context, query, id string) (*entity.BankAccount, error) {
	var a entity.BankAccount
	err := r.q.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Number, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get bank account", err)
	}
	return &a, nil
}

// UpdateBalance persiste el saldo.
func (r *BankAccountRepo) UpdateBalance(ctx context.Context, a *entity.BankAccount) error {
	cmd, err := r.q.Exec(ctx, `UPDATE bank_accounts SET balance = $2, updated_at = $3 WHERE id = $1`,
		a.ID, a.Balance, a.UpdatedAt)
	if err != nil {
		return wrapErr("update bank account", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FinancialTransactionRepo transacciones financieras sobre PostgreSQL.
type FinancialTransactionRepo struct {
	q Querier
}

// NewFinancialTransactionRepository construye el adaptador. Pasar pool o tx.
func NewFinancialTransactionRepository(q Querier) *FinancialTransactionRepo {
	return &FinancialTransactionRepo{q: q}
}

// Create inserta una transacción.
func (r *FinancialTransactionRepo) Create(ctx context.Context, t *entity.FinancialTransaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO financial_transactions (id, account_id, type, amount, reference, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		t.ID, t.AccountID, t.Type, t.Amount, t.Reference, t.OrderID, t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert financial transaction", err)
	}
	return nil
}

// ListByAccount lista transacciones de la cuenta, más recientes primero.
func (r *FinancialTransactionRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*entity.FinancialTransaction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, account_id, type, amount, reference, COALESCE(order_id, ''), created_at
		FROM financial_transactions WHERE account_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, wrapErr("list financial transactions", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.FinancialTransaction, error) {
		var t entity.FinancialTransaction
		err := row.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Reference, &t.OrderID, &t.CreatedAt)
		return &t, err
	})
}

// ExistsForOrder indica si ya hay una transacción del tipo para el pedido.
func (r *FinancialTransactionRepo) ExistsForOrder(ctx context.Context, orderID, txType string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM financial_transactions WHERE order_id = $1 AND type = $2)`,
		orderID, txType).Scan(&exists)
	if err != nil {
		return false, wrapErr("exists financial transaction", err)
	}
	return exists, nil
}
