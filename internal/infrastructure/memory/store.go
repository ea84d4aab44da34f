// Package memory implementa los puertos de persistencia en memoria. Se usa en tests y
// en desarrollo sin base de datos. Una transacción toma el mutex del store, trabaja sobre
// una copia del estado y la publica solo si fn termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-lotes/internal/application/finance"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ finance.TxRunner   = (*Store)(nil)
)

type state struct {
	products     map[string]*entity.Product
	batches      map[string]*entity.Batch
	movements    []*entity.Movement
	orders       map[string]*entity.SalesOrder
	accounts     map[string]*entity.BankAccount
	transactions []*entity.FinancialTransaction
}

func newState() *state {
	return &state{
		products: make(map[string]*entity.Product),
		batches:  make(map[string]*entity.Batch),
		orders:   make(map[string]*entity.SalesOrder),
		accounts: make(map[string]*entity.BankAccount),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:     make(map[string]*entity.Product, len(s.products)),
		batches:      make(map[string]*entity.Batch, len(s.batches)),
		movements:    append([]*entity.Movement(nil), s.movements...),
		orders:       make(map[string]*entity.SalesOrder, len(s.orders)),
		accounts:     make(map[string]*entity.BankAccount, len(s.accounts)),
		transactions: append([]*entity.FinancialTransaction(nil), s.transactions...),
	}
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.batches {
		c.batches[k] = copyBatch(v)
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range s.accounts {
		a := *v
		c.accounts[k] = &a
	}
	return c
}

// Store estado en memoria protegido por un único mutex.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; confirma la copia si fn retorna nil.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(inventory.Repos{
		Products:  &ProductRepo{tx: tx},
		Batches:   &BatchRepo{tx: tx},
		Movements: &MovementRepo{tx: tx},
		Orders:    &SalesOrderRepo{tx: tx},
	}); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// RunFinance igual que Run con los repositorios financieros.
func (s *Store) RunFinance(ctx context.Context, fn func(r finance.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.st.clone()
	if err := fn(finance.Repos{
		Accounts:     &BankAccountRepo{tx: tx},
		Transactions: &FinancialTransactionRepo{tx: tx},
	}); err != nil {
		return err
	}
	s.st = tx
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// Batches repositorio de lotes fuera de transacción.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{store: s} }

// Movements repositorio del kardex fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// Orders repositorio de pedidos fuera de transacción.
func (s *Store) Orders() *SalesOrderRepo { return &SalesOrderRepo{store: s} }

// Accounts repositorio de cuentas fuera de transacción.
func (s *Store) Accounts() *BankAccountRepo { return &BankAccountRepo{store: s} }

// Transactions repositorio de transacciones financieras fuera de transacción.
func (s *Store) Transactions() *FinancialTransactionRepo { return &FinancialTransactionRepo{store: s} }

// handle resuelve el estado a usar: el de la transacción, o el publicado bajo el mutex.
type handle struct {
	store *Store
	tx    *state
}

func (h handle) with(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(h.store.st)
}

func copyProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func copyBatch(b *entity.Batch) *entity.Batch {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func copyOrder(o *entity.SalesOrder) *entity.SalesOrder {
	if o == nil {
		return nil
	}
	c := *o
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		c.CancelledAt = &t
	}
	c.Lines = make([]*entity.SalesOrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lc := *l
		lc.Allocations = append([]entity.BatchAllocation(nil), l.Allocations...)
		c.Lines = append(c.Lines, &lc)
	}
	return &c
}
