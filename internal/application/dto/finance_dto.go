package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBankAccountRequest body para POST /api/bank-accounts.
type CreateBankAccountRequest struct {
	Name           string          `json:"name"`
	Number         string          `json:"number"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// BankAccountResponse salida de una cuenta.
type BankAccountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Number    string          `json:"number"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FinancialTransactionResponse salida de una transacción.
type FinancialTransactionResponse struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	OrderID   string          `json:"order_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// FinancialTransactionListResponse lista paginada.
type FinancialTransactionListResponse struct {
	Items []FinancialTransactionResponse `json:"items"`
	Page  PageResponse                   `json:"page"`
}
