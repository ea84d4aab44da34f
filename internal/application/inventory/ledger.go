package inventory

import (
	"context"
	"iter"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

const (
	defaultLedgerPage = 100
	maxLedgerPage     = 500
)

// Ledger lectura del kardex (movimientos de inventario).
type Ledger struct {
	movements repository.MovementRepository
}

// NewLedger construye el lector del kardex.
func NewLedger(movements repository.MovementRepository) *Ledger {
	return &Ledger{movements: movements}
}

// Page devuelve una página y el cursor para la siguiente (nil si no hay más).
func (l *Ledger) Page(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, *repository.MovementCursor, error) {
	filter.Limit = normalizeLimit(filter.Limit)
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, nil, domain.ErrInvalidInput
	}
	items, err := l.movements.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	if len(items) < filter.Limit {
		return items, nil, nil
	}
	last := items[len(items)-1]
	return items, &repository.MovementCursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
}

// Movements recorre el kardex de forma perezosa, del más reciente al más antiguo,
// pidiendo páginas de filter.Limit a medida que se consumen. Cada recorrido arranca
// desde filter (incluido su cursor After), así que la secuencia puede reiniciarse.
func (l *Ledger) Movements(ctx context.Context, filter repository.MovementFilter) iter.Seq2[*entity.Movement, error] {
	return func(yield func(*entity.Movement, error) bool) {
		f := filter
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			items, next, err := l.Page(ctx, f)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, m := range items {
				if !yield(m, nil) {
					return
				}
			}
			if next == nil {
				return
			}
			f.After = next
		}
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLedgerPage
	}
	if limit > maxLedgerPage {
		return maxLedgerPage
	}
	return limit
}
