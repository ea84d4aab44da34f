package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, product_id, purchase_date, cost_price, selling_price, quantity_received,
	quantity_remaining, units_remaining, source_reference, created_at, updated_at`

// fifoOrder usa el índice idx_batches_fifo.
const fifoOrder = ` ORDER BY purchase_date, created_at, id`

// BatchRepo lotes de compra sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create inserta un lote.
func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductID, b.PurchaseDate, b.CostPrice, b.SellingPrice, b.QuantityReceived,
		b.QuantityRemaining, b.UnitsRemaining, b.SourceReference, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrapErr("insert batch", err)
	}
	return nil
}

// GetByID obtiene un lote.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get batch", err)
	}
	return b, nil
}

// ListByProduct lista los lotes del producto en orden FIFO.
func (r *BatchRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Batch, error) {
	return r.list(ctx, `SELECT `+batchColumns+` FROM batches WHERE product_id = $1`+fifoOrder, productID)
}

// ListByProductForUpdate igual que ListByProduct pero bloquea las filas.
func (r *BatchRepo) ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.Batch, error) {
	return r.list(ctx, `SELECT `+batchColumns+` FROM batches WHERE product_id = $1`+fifoOrder+` FOR UPDATE`, productID)
}

func (r *BatchRepo) list(ctx context.Context, query, productID string) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, wrapErr("list batches", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, wrapErr("scan batch", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list batches", err)
	}
	return list, nil
}

// UpdateQuantities persiste las cantidades restantes del lote.
func (r *BatchRepo) UpdateQuantities(ctx context.Context, b *entity.Batch) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE batches SET quantity_remaining = $2, units_remaining = $3, updated_at = $4 WHERE id = $1`,
		b.ID, b.QuantityRemaining, b.UnitsRemaining, b.UpdatedAt)
	if err != nil {
		return wrapErr("update batch", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.ProductID, &b.PurchaseDate, &b.CostPrice, &b.SellingPrice, &b.QuantityReceived,
		&b.QuantityRemaining, &b.UnitsRemaining, &b.SourceReference, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
