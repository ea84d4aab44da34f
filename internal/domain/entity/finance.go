package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción financiera.
const (
	FinancialTypeIncome  = "INGRESO"
	FinancialTypeExpense = "EGRESO"
)

// BankAccount cuenta bancaria o caja.
type BankAccount struct {
	ID        string
	Name      string
	Number    string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FinancialTransaction movimiento de dinero sobre una cuenta.
type FinancialTransaction struct {
	ID        string
	AccountID string
	Type      string
	Amount    decimal.Decimal
	Reference string
	OrderID   string
	CreatedAt time.Time
}
