// Package sales implementa el ciclo de vida del pedido de venta sobre el motor de
// inventario: crear (asigna cada línea FIFO), entregar y anular (repone las líneas fijadas).
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// Listener recibe los eventos de pedidos ya confirmados en BD.
// Un error del listener se registra pero no revierte el pedido.
type Listener interface {
	OnSaleConfirmed(ctx context.Context, order *entity.SalesOrder) error
	OnSaleCancelled(ctx context.Context, order *entity.SalesOrder) error
}

// UseCase casos de uso de pedidos de venta.
type UseCase struct {
	engine    *inventory.Engine
	orders    repository.SalesOrderRepository
	listeners []Listener
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso. orders se usa para lecturas fuera de transacción.
func NewUseCase(engine *inventory.Engine, orders repository.SalesOrderRepository, log zerolog.Logger, listeners ...Listener) *UseCase {
	return &UseCase{
		engine:    engine,
		orders:    orders,
		listeners: listeners,
		log:       log.With().Str("component", "sales").Logger(),
	}
}

// Create confirma un pedido: todas las líneas se asignan en una misma transacción o ninguna.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateSalesOrderRequest) (*dto.SalesOrderResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	productIDs := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		if strings.TrimSpace(l.ProductID) == "" || l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		productIDs = append(productIDs, l.ProductID)
	}

	var order *entity.SalesOrder
	err := uc.engine.Execute(ctx, productIDs, func(r inventory.Repos) error {
		now := uc.engine.Now()
		o := &entity.SalesOrder{
			ID:           uuid.New().String(),
			Number:       orderNumber(now),
			CustomerName: strings.TrimSpace(in.CustomerName),
			Status:       entity.SalesOrderStatusConfirmed,
			Total:        decimal.Zero,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		// La cabecera va primero: cada movimiento de salida la referencia.
		if err := r.Orders.Create(ctx, o); err != nil {
			return err
		}
		for _, l := range in.Lines {
			res, err := uc.engine.AllocateInTx(ctx, r, inventory.AllocateInput{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitMode:  l.UnitMode,
				UnitPrice: l.UnitPrice,
				Reference: "pedido " + o.Number,
				OrderID:   o.ID,
			})
			if err != nil {
				return err
			}
			subtotal := res.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
			o.Lines = append(o.Lines, &entity.SalesOrderLine{
				ID:               uuid.New().String(),
				OrderID:          o.ID,
				ProductID:        l.ProductID,
				Quantity:         l.Quantity,
				UnitMode:         l.UnitMode,
				UnitsSold:        res.UnitsSold,
				PackagesDeducted: res.PackagesDeducted,
				UnitPrice:        res.UnitPrice,
				Subtotal:         subtotal,
				Allocations:      res.Allocations,
			})
			o.Total = o.Total.Add(subtotal)
		}
		if err := r.Orders.AddLines(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		uc.log.Info().Err(err).Int("lines", len(in.Lines)).Msg("pedido rechazado")
		return nil, err
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Str("number", order.Number).
		Str("total", order.Total.String()).
		Msg("pedido confirmado")
	uc.notify(ctx, order, Listener.OnSaleConfirmed)
	return ToSalesOrderResponse(order), nil
}

// Get obtiene un pedido con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.SalesOrderResponse, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return ToSalesOrderResponse(order), nil
}

// Cancel anula un pedido CONFIRMADO y repone sus líneas fijadas en una transacción.
func (uc *UseCase) Cancel(ctx context.Context, id string) (*dto.SalesOrderResponse, error) {
	current, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if !current.Cancellable() {
		return nil, domain.ErrOrderNotCancellable
	}
	productIDs := make([]string, 0, len(current.Lines))
	for _, l := range current.Lines {
		productIDs = append(productIDs, l.ProductID)
	}

	var order *entity.SalesOrder
	err = uc.engine.Execute(ctx, productIDs, func(r inventory.Repos) error {
		o, err := r.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		// Otro proceso pudo anular o entregar entre la lectura y el bloqueo.
		if !o.Cancellable() {
			return domain.ErrOrderNotCancellable
		}
		if err := uc.engine.ReverseInTx(ctx, r, o.Lines, "anulación pedido "+o.Number); err != nil {
			return err
		}
		now := uc.engine.Now()
		o.Status = entity.SalesOrderStatusCancelled
		o.CancelledAt = &now
		o.UpdatedAt = now
		if err := r.Orders.UpdateStatus(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("number", order.Number).Msg("pedido anulado")
	uc.notify(ctx, order, Listener.OnSaleCancelled)
	return ToSalesOrderResponse(order), nil
}

// Deliver marca el pedido como ENTREGADO; desde ahí ya no se puede anular.
func (uc *UseCase) Deliver(ctx context.Context, id string) (*dto.SalesOrderResponse, error) {
	var order *entity.SalesOrder
	err := uc.engine.Execute(ctx, nil, func(r inventory.Repos) error {
		o, err := r.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if o.Status != entity.SalesOrderStatusConfirmed {
			return fmt.Errorf("%w: pedido en estado %s", domain.ErrConflict, o.Status)
		}
		o.Status = entity.SalesOrderStatusDelivered
		o.UpdatedAt = uc.engine.Now()
		if err := r.Orders.UpdateStatus(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToSalesOrderResponse(order), nil
}

func (uc *UseCase) notify(ctx context.Context, order *entity.SalesOrder, event func(Listener, context.Context, *entity.SalesOrder) error) {
	for _, l := range uc.listeners {
		if err := event(l, context.WithoutCancel(ctx), order); err != nil {
			uc.log.Error().Err(err).Str("order_id", order.ID).Msg("listener de pedido falló")
		}
	}
}

func orderNumber(now time.Time) string {
	return fmt.Sprintf("PV-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.New().String()[:8]))
}

// ToSalesOrderResponse convierte el pedido en su DTO.
func ToSalesOrderResponse(o *entity.SalesOrder) *dto.SalesOrderResponse {
	lines := make([]dto.SalesOrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		allocs := make([]dto.BatchAllocationDTO, 0, len(l.Allocations))
		for _, a := range l.Allocations {
			allocs = append(allocs, dto.BatchAllocationDTO{BatchID: a.BatchID, Packages: a.Packages, Units: a.Units})
		}
		lines = append(lines, dto.SalesOrderLineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			UnitMode:         l.UnitMode,
			UnitsSold:        l.UnitsSold,
			PackagesDeducted: l.PackagesDeducted,
			UnitPrice:        l.UnitPrice,
			Subtotal:         l.Subtotal,
			Allocations:      allocs,
		})
	}
	return &dto.SalesOrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		CustomerName: o.CustomerName,
		Status:       o.Status,
		Total:        o.Total,
		Lines:        lines,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		CancelledAt:  o.CancelledAt,
	}
}
