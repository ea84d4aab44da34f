package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSalesOrderLine línea de pedido.
type CreateSalesOrderLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitMode  string          `json:"unit_mode"`
	UnitPrice decimal.Decimal `json:"unit_price"` // cero = precio de lista
}

// CreateSalesOrderRequest body para POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	CustomerName string                 `json:"customer_name"`
	Lines        []CreateSalesOrderLine `json:"lines"`
}

// SalesOrderLineResponse línea fijada.
type SalesOrderLineResponse struct {
	ID               string               `json:"id"`
	ProductID        string               `json:"product_id"`
	Quantity         int                  `json:"quantity"`
	UnitMode         string               `json:"unit_mode"`
	UnitsSold        int                  `json:"units_sold"`
	PackagesDeducted int                  `json:"packages_deducted"`
	UnitPrice        decimal.Decimal      `json:"unit_price"`
	Subtotal         decimal.Decimal      `json:"subtotal"`
	Allocations      []BatchAllocationDTO `json:"allocations"`
}

// SalesOrderResponse salida de un pedido.
type SalesOrderResponse struct {
	ID           string                   `json:"id"`
	Number       string                   `json:"number"`
	CustomerName string                   `json:"customer_name"`
	Status       string                   `json:"status"`
	Total        decimal.Decimal          `json:"total"`
	Lines        []SalesOrderLineResponse `json:"lines"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
	CancelledAt  *time.Time               `json:"cancelled_at,omitempty"`
}
