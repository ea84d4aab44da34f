package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-lotes/internal/application/finance"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
)

// Ensure TxRunner implements inventory.TxRunner and finance.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ finance.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout limita la espera por filas
// bloqueadas; al vencer, Postgres responde 55P03 y el motor lo trata como conflicto.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		// SET LOCAL no admite parámetros; el valor es un entero propio.
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())); err != nil {
			return wrapErr("set lock_timeout", err)
		}
	}

	repos := inventory.Repos{
		Products:  NewProductRepository(tx),
		Batches:   NewBatchRepository(tx),
		Movements: NewMovementRepository(tx),
		Orders:    NewSalesOrderRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// RunFinance inicia una transacción con repos de cuentas y transacciones financieras.
func (r *TxRunner) RunFinance(ctx context.Context, fn func(repos finance.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := finance.Repos{
		Accounts:     NewBankAccountRepository(tx),
		Transactions: NewFinancialTransactionRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}
