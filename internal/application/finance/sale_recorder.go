package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// SaleRecorder registra en la cuenta por defecto el dinero de los pedidos:
// INGRESO al confirmar y EGRESO al anular. Cada evento se registra una sola vez por pedido.
type SaleRecorder struct {
	txRunner  TxRunner
	accountID string
	log       zerolog.Logger
	now       func() time.Time
}

// NewSaleRecorder construye el consumidor. Con accountID vacío no registra nada.
func NewSaleRecorder(txRunner TxRunner, accountID string, log zerolog.Logger) *SaleRecorder {
	return &SaleRecorder{
		txRunner:  txRunner,
		accountID: accountID,
		log:       log.With().Str("component", "finance").Logger(),
		now:       time.Now,
	}
}

// OnSaleConfirmed abona el total del pedido.
func (s *SaleRecorder) OnSaleConfirmed(ctx context.Context, order *entity.SalesOrder) error {
	return s.record(ctx, order, entity.FinancialTypeIncome, "venta "+order.Number)
}

// OnSaleCancelled debita el total del pedido anulado.
func (s *SaleRecorder) OnSaleCancelled(ctx context.Context, order *entity.SalesOrder) error {
	return s.record(ctx, order, entity.FinancialTypeExpense, "anulación "+order.Number)
}

func (s *SaleRecorder) record(ctx context.Context, order *entity.SalesOrder, txType, reference string) error {
	if s.accountID == "" || order == nil || order.Total.IsZero() {
		return nil
	}
	return s.txRunner.RunFinance(ctx, func(r Repos) error {
		done, err := r.Transactions.ExistsForOrder(ctx, order.ID, txType)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		acc, err := r.Accounts.GetForUpdate(ctx, s.accountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return fmt.Errorf("cuenta %s: %w", s.accountID, domain.ErrNotFound)
		}
		now := s.now()
		switch txType {
		case entity.FinancialTypeIncome:
			acc.Balance = acc.Balance.Add(order.Total)
		default:
			acc.Balance = acc.Balance.Sub(order.Total)
		}
		acc.UpdatedAt = now
		if err := r.Accounts.UpdateBalance(ctx, acc); err != nil {
			return err
		}
		if err := r.Transactions.Create(ctx, &entity.FinancialTransaction{
			ID:        uuid.New().String(),
			AccountID: acc.ID,
			Type:      txType,
			Amount:    order.Total,
			Reference: reference,
			OrderID:   order.ID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		s.log.Info().
			Str("order_id", order.ID).
			Str("type", txType).
			Str("amount", order.Total.String()).
			Msg("transacción financiera registrada")
		return nil
	})
}
