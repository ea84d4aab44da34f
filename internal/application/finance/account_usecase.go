package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// AccountUseCase alta y consulta de cuentas.
type AccountUseCase struct {
	accounts     repository.BankAccountRepository
	transactions repository.FinancialTransactionRepository
}

// NewAccountUseCase construye el caso de uso.
func NewAccountUseCase(accounts repository.BankAccountRepository, transactions repository.FinancialTransactionRepository) *AccountUseCase {
	return &AccountUseCase{accounts: accounts, transactions: transactions}
}

// Create crea una cuenta con saldo inicial.
func (uc *AccountUseCase) Create(ctx context.Context, in dto.CreateBankAccountRequest) (*dto.BankAccountResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.OpeningBalance.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	acc := &entity.BankAccount{
		ID:        uuid.New().String(),
		Name:      name,
		Number:    strings.TrimSpace(in.Number),
		Balance:   in.OpeningBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}
	return toAccountResponse(acc), nil
}

// Get obtiene una cuenta.
func (uc *AccountUseCase) Get(ctx context.Context, id string) (*dto.BankAccountResponse, error) {
	acc, err := uc.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrNotFound
	}
	return toAccountResponse(acc), nil
}

// ListTransactions lista las transacciones de una cuenta, más recientes primero.
func (uc *AccountUseCase) ListTransactions(ctx context.Context, accountID string, page dto.PageRequest) (*dto.FinancialTransactionListResponse, error) {
	page.DefaultPage()
	acc, err := uc.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.transactions.ListByAccount(ctx, accountID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FinancialTransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.FinancialTransactionResponse{
			ID:        t.ID,
			AccountID: t.AccountID,
			Type:      t.Type,
			Amount:    t.Amount,
			Reference: t.Reference,
			OrderID:   t.OrderID,
			CreatedAt: t.CreatedAt,
		})
	}
	return &dto.FinancialTransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toAccountResponse(a *entity.BankAccount) *dto.BankAccountResponse {
	return &dto.BankAccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Number:    a.Number,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
