package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo pedidos de venta con líneas fijadas y asignaciones por lote.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx.
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// Create inserta la cabecera. Las líneas se agregan con AddLines en la misma transacción.
func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales_orders (id, number, customer_name, status, total, created_at, updated_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Number, o.CustomerName, o.Status, o.Total, o.CreatedAt, o.UpdatedAt, o.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert sales order", err)
	}
	return nil
}

// AddLines inserta líneas y asignaciones por lote, y fija el total de la cabecera.
func (r *SalesOrderRepo) AddLines(ctx context.Context, o *entity.SalesOrder) error {
	for i, l := range o.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sales_order_lines (id, order_id, line_no, product_id, quantity, unit_mode, units_sold,
				packages_deducted, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			l.ID, o.ID, i+1, l.ProductID, l.Quantity, l.UnitMode, l.UnitsSold, l.PackagesDeducted, l.UnitPrice, l.Subtotal,
		)
		if err != nil {
			return wrapErr("insert sales order line", err)
		}
		for _, a := range l.Allocations {
			_, err := r.q.Exec(ctx, `
				INSERT INTO sales_order_allocations (line_id, batch_id, packages, units) VALUES ($1, $2, $3, $4)`,
				l.ID, a.BatchID, a.Packages, a.Units,
			)
			if err != nil {
				return wrapErr("insert sales order allocation", err)
			}
		}
	}
	tag, err := r.q.Exec(ctx, `UPDATE sales_orders SET total = $2, updated_at = $3 WHERE id = $1`,
		o.ID, o.Total, o.UpdatedAt)
	if err != nil {
		return wrapErr("update sales order total", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene el pedido con sus líneas.
func (r *SalesOrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene el pedido bloqueando la cabecera.
func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, id, true)
}

func (r *SalesOrderRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.SalesOrder, error) {
	query := `SELECT id, number, customer_name, status, total, created_at, updated_at, cancelled_at
		FROM sales_orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var o entity.SalesOrder
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Number, &o.CustomerName, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt, &o.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get sales order", err)
	}
	lines, err := r.lines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *SalesOrderRepo) lines(ctx context.Context, orderID string) ([]*entity.SalesOrderLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_mode, units_sold, packages_deducted, unit_price, subtotal
		FROM sales_order_lines WHERE order_id = $1 ORDER BY line_no`, orderID)
	if err != nil {
		return nil, wrapErr("list sales order lines", err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.SalesOrderLine, error) {
		var l entity.SalesOrderLine
		err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitMode, &l.UnitsSold,
			&l.PackagesDeducted, &l.UnitPrice, &l.Subtotal)
		return &l, err
	})
	if err != nil {
		return nil, wrapErr("scan sales order line", err)
	}
	byID := make(map[string]*entity.SalesOrderLine, len(lines))
	for _, l := range lines {
		byID[l.ID] = l
	}

	arows, err := r.q.Query(ctx, `
		SELECT a.line_id, a.batch_id, a.packages, a.units
		FROM sales_order_allocations a
		JOIN sales_order_lines l ON l.id = a.line_id
		WHERE l.order_id = $1 ORDER BY l.line_no, a.id`, orderID)
	if err != nil {
		return nil, wrapErr("list sales order allocations", err)
	}
	defer arows.Close()
	for arows.Next() {
		var lineID string
		var a entity.BatchAllocation
		if err := arows.Scan(&lineID, &a.BatchID, &a.Packages, &a.Units); err != nil {
			return nil, wrapErr("scan sales order allocation", err)
		}
		if l := byID[lineID]; l != nil {
			l.Allocations = append(l.Allocations, a)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, wrapErr("list sales order allocations", err)
	}
	return lines, nil
}

// UpdateStatus persiste estado y fechas del pedido.
func (r *SalesOrderRepo) UpdateStatus(ctx context.Context, o *entity.SalesOrder) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE sales_orders SET status = $2, updated_at = $3, cancelled_at = $4 WHERE id = $1`,
		o.ID, o.Status, o.UpdatedAt, o.CancelledAt)
	if err != nil {
		return wrapErr("update sales order", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
