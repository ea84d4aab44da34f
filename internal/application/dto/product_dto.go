package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicia en cero y solo
// cambia con recepciones de lotes y ventas.
type CreateProductRequest struct {
	SKU             string          `json:"sku" validate:"required,min=1,max=100"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	UnitsPerPackage int             `json:"units_per_package" validate:"required,min=1"`
	SellByUnit      bool            `json:"sell_by_unit"`
}

// UpdateProductRequest entrada para actualizar un producto (sin costo ni stock).
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	SellByUnit  *bool            `json:"sell_by_unit"`
}

// ProductResponse salida de un producto con sus contadores de stock.
type ProductResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Cost            decimal.Decimal `json:"cost"`
	UnitsPerPackage int             `json:"units_per_package"`
	SellByUnit      bool            `json:"sell_by_unit"`
	PackageQuantity int             `json:"package_quantity"`
	UnitsAvailable  int             `json:"units_available"`
	TotalUnits      int             `json:"total_units"`
	TotalIn         int             `json:"total_in"`
	TotalOut        int             `json:"total_out"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
