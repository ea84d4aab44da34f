package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
)

var t0 = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func TestMovementRepo_PedidoInexistente(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.Movements().Create(ctx, &entity.Movement{
		ID: "m1", ProductID: "p1", Direction: entity.DirectionOut, Kind: entity.MovementKindSale,
		OrderID: "no-existe", CreatedAt: t0,
	})
	require.ErrorIs(t, err, memory.ErrForeignKey)

	// Sin pedido (salida directa) no hay referencia que validar.
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{
		ID: "m2", ProductID: "p1", Direction: entity.DirectionOut, Kind: entity.MovementKindSale, CreatedAt: t0,
	}))
}

func TestSalesOrderRepo_CabeceraYLuegoLineas(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	o := &entity.SalesOrder{ID: "o1", Number: "PV-1", Status: entity.SalesOrderStatusConfirmed, CreatedAt: t0, UpdatedAt: t0}

	require.ErrorIs(t, store.Orders().AddLines(ctx, o), memory.ErrForeignKey, "sin cabecera no hay líneas")

	err := store.Run(ctx, func(r inventory.Repos) error {
		if err := r.Orders.Create(ctx, o); err != nil {
			return err
		}
		if err := r.Movements.Create(ctx, &entity.Movement{
			ID: "m1", ProductID: "p1", Direction: entity.DirectionOut, Kind: entity.MovementKindSale, OrderID: o.ID, CreatedAt: t0,
		}); err != nil {
			return err
		}
		o.Lines = []*entity.SalesOrderLine{{ID: "l1", OrderID: o.ID, ProductID: "p1", Quantity: 2, UnitMode: entity.UnitModePackage}}
		o.Total = decimal.NewFromInt(2000)
		return r.Orders.AddLines(ctx, o)
	})
	require.NoError(t, err)

	got, err := store.Orders().GetByID(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(2000)))

	movs, err := store.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}
