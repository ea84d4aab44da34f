package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveBatchRequest body para POST /api/inventory/batches.
type ReceiveBatchRequest struct {
	ProductID       string          `json:"product_id"`
	PurchaseDate    *time.Time      `json:"purchase_date,omitempty"`
	Quantity        int             `json:"quantity"` // paquetes
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	SourceReference string          `json:"source_reference"`
}

// BatchResponse salida de un lote.
type BatchResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	PurchaseDate      time.Time       `json:"purchase_date"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	QuantityReceived  int             `json:"quantity_received"`
	QuantityRemaining int             `json:"quantity_remaining"`
	UnitsRemaining    int             `json:"units_remaining"`
	SourceReference   string          `json:"source_reference"`
	CreatedAt         time.Time       `json:"created_at"`
}

// AllocateRequest body para POST /api/inventory/allocations.
type AllocateRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitMode  string          `json:"unit_mode"` // PAQUETE | UNIDAD
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reference string          `json:"reference"`
}

// BatchAllocationDTO paquetes/unidades tomados de un lote.
type BatchAllocationDTO struct {
	BatchID  string `json:"batch_id"`
	Packages int    `json:"packages"`
	Units    int    `json:"units"`
}

// AllocationResponse salida de una asignación FIFO.
type AllocationResponse struct {
	ProductID        string               `json:"product_id"`
	UnitMode         string               `json:"unit_mode"`
	Quantity         int                  `json:"quantity"`
	UnitsSold        int                  `json:"units_sold"`
	PackagesDeducted int                  `json:"packages_deducted"`
	Cost             decimal.Decimal      `json:"cost"`
	Allocations      []BatchAllocationDTO `json:"allocations"`
	MovementID       string               `json:"movement_id"`
}

// MovementResponse salida de un movimiento del kardex.
type MovementResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Direction string          `json:"direction"`
	Kind      string          `json:"kind"`
	UnitMode  string          `json:"unit_mode"`
	Quantity  int             `json:"quantity"`
	Packages  int             `json:"packages"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Reference string          `json:"reference"`
	OrderID   string          `json:"order_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// MovementListResponse página del kardex; Next es el cursor opaco de la siguiente página.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Next  string             `json:"next,omitempty"`
}

// InsufficientStockResponse cuerpo de error con la cantidad disponible.
type InsufficientStockResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available int    `json:"available"`
	UnitMode  string `json:"unit_mode"`
}
