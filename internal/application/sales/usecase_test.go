package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/finance"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/application/sales"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu        sync.Mutex
	confirmed []string
	cancelled []string
}

func (r *recorder) OnSaleConfirmed(_ context.Context, o *entity.SalesOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed = append(r.confirmed, o.ID)
	return nil
}

func (r *recorder) OnSaleCancelled(_ context.Context, o *entity.SalesOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, o.ID)
	return errors.New("el listener falla pero la anulación ya se confirmó")
}

type fixture struct {
	store  *memory.Store
	engine *inventory.Engine
	uc     *sales.UseCase
	events *recorder
}

func newFixture(t *testing.T, listeners ...sales.Listener) *fixture {
	t.Helper()
	store := memory.NewStore()
	engine := inventory.NewEngine(store, lock.NewLocal(), inventory.EngineConfig{MaxRetries: 2}, zerolog.Nop())
	events := &recorder{}
	uc := sales.NewUseCase(engine, store.Orders(), zerolog.Nop(), append([]sales.Listener{events}, listeners...)...)
	return &fixture{store: store, engine: engine, uc: uc, events: events}
}

func (f *fixture) product(t *testing.T, id string, upp int, quantities ...int) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID: id, SKU: "SKU-" + id, Name: id, UnitsPerPackage: upp, SellByUnit: upp > 1,
		Price: decimal.NewFromInt(1000), UnitPrice: decimal.NewFromInt(100), CreatedAt: t0, UpdatedAt: t0,
	}))
	for i, q := range quantities {
		_, err := f.engine.Receive(context.Background(), inventory.ReceiveInput{
			ProductID: id, PurchaseDate: t0.AddDate(0, 0, i), Quantity: q, CostPrice: decimal.NewFromInt(500),
		})
		require.NoError(t, err)
	}
}

func (f *fixture) stock(t *testing.T, id string) entity.StockSnapshot {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Snapshot()
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_FijaLineasYTotal(t *testing.T) {
	f := newFixture(t)
	f.product(t, "a", 1, 3, 5)
	f.product(t, "b", 10, 2)

	order, err := f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		CustomerName: "Tienda Don José",
		Lines: []dto.CreateSalesOrderLine{
			{ProductID: "a", Quantity: 4, UnitMode: entity.UnitModePackage},
			{ProductID: "b", Quantity: 15, UnitMode: entity.UnitModeUnit, UnitPrice: decimal.NewFromInt(120)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderStatusConfirmed, order.Status)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 4, order.Lines[0].PackagesDeducted)
	assert.Len(t, order.Lines[0].Allocations, 2)
	assert.Equal(t, 15, order.Lines[1].UnitsSold)
	assert.Equal(t, 2, order.Lines[1].PackagesDeducted)
	// 4*1000 + 15*120
	assert.True(t, order.Total.Equal(decimal.NewFromInt(5800)), "total: %s", order.Total)
	assert.Equal(t, []string{order.ID}, f.events.confirmed)

	got, err := f.uc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Lines, got.Lines)
	assert.Equal(t, 5, f.stock(t, "b").UnitsAvailable)
}

func TestCreate_TodoONada(t *testing.T) {
	f := newFixture(t)
	f.product(t, "a", 1, 5)
	f.product(t, "b", 1, 1)
	beforeA, beforeB := f.stock(t, "a"), f.stock(t, "b")

	_, err := f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Lines: []dto.CreateSalesOrderLine{
			{ProductID: "a", Quantity: 2, UnitMode: entity.UnitModePackage},
			{ProductID: "b", Quantity: 2, UnitMode: entity.UnitModePackage},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, beforeA, f.stock(t, "a"), "la primera línea se revierte")
	assert.Equal(t, beforeB, f.stock(t, "b"))
	assert.Empty(t, f.events.confirmed)
}

func TestCreate_CabeceraAntesQueLosMovimientos(t *testing.T) {
	// El store en memoria rechaza movimientos de un pedido que aún no existe,
	// igual que la FK inventory_movements.order_id en Postgres.
	f := newFixture(t)
	f.product(t, "a", 6, 4)

	order, err := f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Lines: []dto.CreateSalesOrderLine{
			{ProductID: "a", Quantity: 2, UnitMode: entity.UnitModePackage},
			{ProductID: "a", Quantity: 3, UnitMode: entity.UnitModeUnit},
		},
	})
	require.NoError(t, err)

	movs, err := f.store.Movements().List(context.Background(), repository.MovementFilter{ProductID: "a"})
	require.NoError(t, err)
	var salidas int
	for _, m := range movs {
		if m.Direction == entity.DirectionOut {
			assert.Equal(t, order.ID, m.OrderID)
			salidas++
		}
	}
	assert.Equal(t, 2, salidas, "una salida por línea")

	stored, err := f.store.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Lines, 2)
	assert.True(t, stored.Total.Equal(order.Total), "el total se guarda con las líneas")
}

func TestCreate_MismoProductoEnDosLineas(t *testing.T) {
	f := newFixture(t)
	f.product(t, "a", 6, 2)

	_, err := f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Lines: []dto.CreateSalesOrderLine{
			{ProductID: "a", Quantity: 1, UnitMode: entity.UnitModePackage},
			{ProductID: "a", Quantity: 4, UnitMode: entity.UnitModeUnit},
		},
	})
	require.NoError(t, err)
	s := f.stock(t, "a")
	assert.Equal(t, 0, s.PackageQuantity)
	assert.Equal(t, 2, s.UnitsAvailable)
	assert.Equal(t, 2, s.TotalOut)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Lines: []dto.CreateSalesOrderLine{{ProductID: "a", Quantity: -1, UnitMode: entity.UnitModePackage}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel / Deliver
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_RestauraStockExacto(t *testing.T) {
	f := newFixture(t)
	f.product(t, "a", 1, 3, 5)
	f.product(t, "b", 10, 2)
	beforeA, beforeB := f.stock(t, "a"), f.stock(t, "b")

	order, err := f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Lines: []dto.CreateSalesOrderLine{
			{ProductID: "a", Quantity: 4, UnitMode: entity.UnitModePackage},
			{ProductID: "b", Quantity: 15, UnitMode: entity.UnitModeUnit},
		},
	})
	require.NoError(t, err)

	cancelled, err := f.uc.Cancel(context.Background(), order.ID)
	require.NoError(t, err, "un error del listener no revierte la anulación")
	assert.Equal(t, entity.SalesOrderStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, beforeA, f.stock(t, "a"))
	assert.Equal(t, beforeB, f.stock(t, "b"))
	assert.Equal(t, []string{order.ID}, f.events.cancelled)

	_, err = f.uc.Cancel(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotCancellable, "no se anula dos veces")
}

func TestCancel_UsaLineaFijadaAunqueCambieElProducto(t *testing.T) {
	f := newFixture(t)
	f.product(t, "a", 10, 2)
	order, err := f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Lines: []dto.CreateSalesOrderLine{{ProductID: "a", Quantity: 15, UnitMode: entity.UnitModeUnit}},
	})
	require.NoError(t, err)

	// se desactiva la venta por unidad después de confirmar
	p, err := f.store.Products().GetByID(context.Background(), "a")
	require.NoError(t, err)
	p.SellByUnit = false
	require.NoError(t, f.store.Products().Update(context.Background(), p))

	_, err = f.uc.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	s := f.stock(t, "a")
	assert.Equal(t, 2, s.PackageQuantity)
	assert.Equal(t, 0, s.UnitsAvailable)
}

func TestDeliver_YaNoSePuedeAnular(t *testing.T) {
	f := newFixture(t)
	f.product(t, "a", 1, 5)
	order, err := f.uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Lines: []dto.CreateSalesOrderLine{{ProductID: "a", Quantity: 1, UnitMode: entity.UnitModePackage}},
	})
	require.NoError(t, err)

	delivered, err := f.uc.Deliver(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SalesOrderStatusDelivered, delivered.Status)

	_, err = f.uc.Cancel(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotCancellable)
	assert.Equal(t, 4, f.stock(t, "a").PackageQuantity)

	_, err = f.uc.Deliver(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCancel_PedidoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Cancel(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Finanzas como consumidor
// ──────────────────────────────────────────────────────────────────────────────

func TestSaleRecorder_IngresoYEgreso(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Accounts().Create(context.Background(), &entity.BankAccount{
		ID: "caja", Name: "Caja", Balance: decimal.NewFromInt(10000), CreatedAt: t0, UpdatedAt: t0,
	}))
	recorder := finance.NewSaleRecorder(store, "caja", zerolog.Nop())
	engine := inventory.NewEngine(store, nil, inventory.EngineConfig{}, zerolog.Nop())
	uc := sales.NewUseCase(engine, store.Orders(), zerolog.Nop(), recorder)

	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: "a", SKU: "A", Name: "A", UnitsPerPackage: 1, Price: decimal.NewFromInt(2500), CreatedAt: t0,
	}))
	_, err := engine.Receive(context.Background(), inventory.ReceiveInput{ProductID: "a", Quantity: 5, CostPrice: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	order, err := uc.Create(context.Background(), dto.CreateSalesOrderRequest{
		Lines: []dto.CreateSalesOrderLine{{ProductID: "a", Quantity: 2, UnitMode: entity.UnitModePackage}},
	})
	require.NoError(t, err)
	acc, err := store.Accounts().GetByID(context.Background(), "caja")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(15000)), "saldo: %s", acc.Balance)

	// un evento repetido no duplica la transacción
	o, err := store.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NoError(t, recorder.OnSaleConfirmed(context.Background(), o))

	_, err = uc.Cancel(context.Background(), order.ID)
	require.NoError(t, err)
	acc, err = store.Accounts().GetByID(context.Background(), "caja")
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(10000)), "saldo: %s", acc.Balance)

	txs, err := store.Transactions().ListByAccount(context.Background(), "caja", 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, entity.FinancialTypeExpense, txs[0].Type)
	assert.Equal(t, entity.FinancialTypeIncome, txs[1].Type)
}
