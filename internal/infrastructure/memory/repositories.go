package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// ErrForeignKey replica en memoria las claves foráneas del esquema de Postgres.
var ErrForeignKey = errors.New("memory: referencia a un registro inexistente")

var (
	_ repository.ProductRepository              = (*ProductRepo)(nil)
	_ repository.BatchRepository                = (*BatchRepo)(nil)
	_ repository.MovementRepository             = (*MovementRepo)(nil)
	_ repository.SalesOrderRepository           = (*SalesOrderRepo)(nil)
	_ repository.BankAccountRepository          = (*BankAccountRepo)(nil)
	_ repository.FinancialTransactionRepository = (*FinancialTransactionRepo)(nil)
)

// ── Productos ───────────────────────────────────────────────────────────────

// ProductRepo productos en memoria. Devuelve copias; los cambios se aplican con Update/UpdateStock.
type ProductRepo struct {
	store *Store
	tx    *state
}

func (r *ProductRepo) h() handle { return handle{store: r.store, tx: r.tx} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.h().with(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range st.products {
			if existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h().with(func(st *state) error {
		out = copyProduct(st.products[id])
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya tiene el mutex del store.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h().with(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = copyProduct(p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.h().with(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrProductNotFound
		}
		cur.Name = p.Name
		cur.Description = p.Description
		cur.Price = p.Price
		cur.UnitPrice = p.UnitPrice
		cur.SellByUnit = p.SellByUnit
		cur.UpdatedAt = p.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, p *entity.Product) error {
	return r.h().with(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrProductNotFound
		}
		if cur.Version != p.Version-1 {
			return domain.ErrConcurrencyConflict
		}
		cur.PackageQuantity = p.PackageQuantity
		cur.UnitsAvailable = p.UnitsAvailable
		cur.TotalIn = p.TotalIn
		cur.TotalOut = p.TotalOut
		cur.Cost = p.Cost
		cur.Price = p.Price
		cur.Version = p.Version
		cur.UpdatedAt = p.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.h().with(func(st *state) error {
		all := make([]*entity.Product, 0, len(st.products))
		for _, p := range st.products {
			all = append(all, p)
		}
		slices.SortFunc(all, func(a, b *entity.Product) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		for i := offset; i < len(all) && len(out) < limit; i++ {
			out = append(out, copyProduct(all[i]))
		}
		return nil
	})
	return out, err
}

// ── Lotes ───────────────────────────────────────────────────────────────────

// BatchRepo lotes en memoria.
type BatchRepo struct {
	store *Store
	tx    *state
}

func (r *BatchRepo) h() handle { return handle{store: r.store, tx: r.tx} }

func (r *BatchRepo) Create(_ context.Context, b *entity.Batch) error {
	return r.h().with(func(st *state) error {
		if _, ok := st.batches[b.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.products[b.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		st.batches[b.ID] = copyBatch(b)
		return nil
	})
}

func (r *BatchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	var out *entity.Batch
	err := r.h().with(func(st *state) error {
		out = copyBatch(st.batches[id])
		return nil
	})
	return out, err
}

func (r *BatchRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	err := r.h().with(func(st *state) error {
		for _, b := range st.batches {
			if b.ProductID == productID {
				out = append(out, copyBatch(b))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Batch) int {
		if c := a.PurchaseDate.Compare(b.PurchaseDate); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r *BatchRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Batch, error) {
	return r.ListByProduct(ctx, productID)
}

func (r *BatchRepo) UpdateQuantities(_ context.Context, b *entity.Batch) error {
	return r.h().with(func(st *state) error {
		cur, ok := st.batches[b.ID]
		if !ok {
			return domain.ErrBatchNotFound
		}
		if b.QuantityRemaining < 0 || b.QuantityRemaining > cur.QuantityReceived {
			return domain.ErrInvalidInput
		}
		cur.QuantityRemaining = b.QuantityRemaining
		cur.UnitsRemaining = b.UnitsRemaining
		cur.UpdatedAt = b.UpdatedAt
		return nil
	})
}

// ── Kardex ──────────────────────────────────────────────────────────────────

// MovementRepo kardex en memoria (solo inserción).
type MovementRepo struct {
	store *Store
	tx    *state
}

func (r *MovementRepo) h() handle { return handle{store: r.store, tx: r.tx} }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.h().with(func(st *state) error {
		// Igual que la FK inventory_movements.order_id → sales_orders.id.
		if m.OrderID != "" {
			if _, ok := st.orders[m.OrderID]; !ok {
				return fmt.Errorf("%w: pedido %s", ErrForeignKey, m.OrderID)
			}
		}
		c := *m
		st.movements = append(st.movements, &c)
		return nil
	})
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var matched []*entity.Movement
	err := r.h().with(func(st *state) error {
		for _, m := range st.movements {
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !m.CreatedAt.Before(*f.To) {
				continue
			}
			if f.After != nil && !movementBefore(m, f.After) {
				continue
			}
			c := *m
			matched = append(matched, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(matched, func(a, b *entity.Movement) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

// movementBefore indica si m va después del cursor en orden (created_at DESC, id DESC).
func movementBefore(m *entity.Movement, c *repository.MovementCursor) bool {
	if m.CreatedAt.Before(c.CreatedAt) {
		return true
	}
	return m.CreatedAt.Equal(c.CreatedAt) && m.ID < c.ID
}

// ── Pedidos ─────────────────────────────────────────────────────────────────

// SalesOrderRepo pedidos en memoria.
type SalesOrderRepo struct {
	store *Store
	tx    *state
}

func (r *SalesOrderRepo) h() handle { return handle{store: r.store, tx: r.tx} }

func (r *SalesOrderRepo) Create(_ context.Context, o *entity.SalesOrder) error {
	return r.h().with(func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return domain.ErrDuplicate
		}
		st.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func (r *SalesOrderRepo) AddLines(_ context.Context, o *entity.SalesOrder) error {
	return r.h().with(func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok {
			return fmt.Errorf("%w: pedido %s", ErrForeignKey, o.ID)
		}
		cur.Lines = copyOrder(o).Lines
		cur.Total = o.Total
		cur.UpdatedAt = o.UpdatedAt
		return nil
	})
}

func (r *SalesOrderRepo) GetByID(_ context.Context, id string) (*entity.SalesOrder, error) {
	var out *entity.SalesOrder
	err := r.h().with(func(st *state) error {
		out = copyOrder(st.orders[id])
		return nil
	})
	return out, err
}

func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *SalesOrderRepo) UpdateStatus(_ context.Context, o *entity.SalesOrder) error {
	return r.h().with(func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = o.Status
		cur.UpdatedAt = o.UpdatedAt
		cur.CancelledAt = nil
		if o.CancelledAt != nil {
			t := *o.CancelledAt
			cur.CancelledAt = &t
		}
		return nil
	})
}

// ── Finanzas ────────────────────────────────────────────────────────────────

// BankAccountRepo cuentas en memoria.
type BankAccountRepo struct {
	store *Store
	tx    *state
}

func (r *BankAccountRepo) h() handle { return handle{store: r.store, tx: r.tx} }

func (r *BankAccountRepo) Create(_ context.Context, a *entity.BankAccount) error {
	return r.h().with(func(st *state) error {
		if _, ok := st.accounts[a.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *a
		st.accounts[a.ID] = &c
		return nil
	})
}

func (r *BankAccountRepo) GetByID(_ context.Context, id string) (*entity.BankAccount, error) {
	var out *entity.BankAccount
	err := r.h().with(func(st *state) error {
		if a, ok := st.accounts[id]; ok {
			c := *a
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *BankAccountRepo) GetForUpdate(ctx context.Context, id string) (*entity.BankAccount, error) {
	return r.GetByID(ctx, id)
}

func (r *BankAccountRepo) UpdateBalance(_ context.Context, a *entity.BankAccount) error {
	return r.h().with(func(st *state) error {
		cur, ok := st.accounts[a.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Balance = a.Balance
		cur.UpdatedAt = a.UpdatedAt
		return nil
	})
}

// FinancialTransactionRepo transacciones financieras en memoria.
type FinancialTransactionRepo struct {
	store *Store
	tx    *state
}

func (r *FinancialTransactionRepo) h() handle { return handle{store: r.store, tx: r.tx} }

func (r *FinancialTransactionRepo) Create(_ context.Context, t *entity.FinancialTransaction) error {
	return r.h().with(func(st *state) error {
		c := *t
		st.transactions = append(st.transactions, &c)
		return nil
	})
}

func (r *FinancialTransactionRepo) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*entity.FinancialTransaction, error) {
	var out []*entity.FinancialTransaction
	err := r.h().with(func(st *state) error {
		var all []*entity.FinancialTransaction
		for i := len(st.transactions) - 1; i >= 0; i-- {
			if st.transactions[i].AccountID == accountID {
				all = append(all, st.transactions[i])
			}
		}
		for i := offset; i < len(all) && len(out) < limit; i++ {
			c := *all[i]
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

func (r *FinancialTransactionRepo) ExistsForOrder(_ context.Context, orderID, txType string) (bool, error) {
	var found bool
	err := r.h().with(func(st *state) error {
		for _, t := range st.transactions {
			if t.OrderID == orderID && t.Type == txType {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}
