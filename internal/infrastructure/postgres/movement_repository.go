package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex sobre PostgreSQL (solo INSERT y SELECT).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO inventory_movements (id, product_id, direction, kind, unit_mode, quantity, packages,
			unit_price, total, reference, order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Direction, m.Kind, m.UnitMode, m.Quantity, m.Packages,
		m.UnitPrice, m.Total, m.Reference, m.OrderID, m.CreatedAt,
	)
	return wrapErr("insert movement", err)
}

// List devuelve una página ordenada por created_at DESC, id DESC aplicando el cursor After.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	if f.After != nil {
		args = append(args, f.After.CreatedAt, f.After.ID)
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	query := `SELECT id, product_id, direction, kind, unit_mode, quantity, packages, unit_price, total,
		reference, COALESCE(order_id, ''), created_at FROM inventory_movements`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list movements", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Movement, error) {
		var m entity.Movement
		err := row.Scan(&m.ID, &m.ProductID, &m.Direction, &m.Kind, &m.UnitMode, &m.Quantity, &m.Packages,
			&m.UnitPrice, &m.Total, &m.Reference, &m.OrderID, &m.CreatedAt)
		return &m, err
	})
}
