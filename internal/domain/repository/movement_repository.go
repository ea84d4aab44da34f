package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// MovementCursor posición de paginación por llave (created_at, id) descendente.
type MovementCursor struct {
	CreatedAt time.Time
	ID        string
}

// MovementFilter filtros del kardex. ProductID vacío = todos los productos.
type MovementFilter struct {
	ProductID string
	From      *time.Time
	To        *time.Time
	Limit     int
	After     *MovementCursor
}

// MovementRepository puerto del kardex: solo inserción y lectura, sin edición ni borrado.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// List devuelve una página ordenada por created_at DESC, id DESC.
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
}
