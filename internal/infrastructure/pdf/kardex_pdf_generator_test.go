package pdf_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/pdf"
)

func TestGenerateKardexPDF(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	product := &entity.Product{
		ID: "p1", SKU: "GAS-500", Name: "Gaseosa 500ml", UnitsPerPackage: 12,
		PackageQuantity: 7, UnitsAvailable: 5, TotalIn: 10, TotalOut: 3,
		Cost: decimal.RequireFromString("12500.75"),
	}
	batches := []*entity.Batch{{
		ID: "b1", ProductID: "p1", PurchaseDate: now.AddDate(0, 0, -3),
		QuantityReceived: 10, QuantityRemaining: 7, CostPrice: decimal.NewFromInt(12000),
		SourceReference: "compras.xml#1",
	}}
	movements := []*entity.Movement{
		{ID: "m2", ProductID: "p1", Direction: entity.DirectionOut, Kind: entity.MovementKindSale,
			UnitMode: entity.UnitModeUnit, Quantity: 31, Packages: 3, Total: decimal.NewFromInt(40000), CreatedAt: now},
		{ID: "m1", ProductID: "p1", Direction: entity.DirectionIn, Kind: entity.MovementKindPurchase,
			UnitMode: entity.UnitModePackage, Quantity: 10, Packages: 10, Total: decimal.NewFromInt(120000), CreatedAt: now.Add(-time.Hour)},
	}

	out, err := pdf.NewKardexGenerator().GenerateKardexPDF(context.Background(), product, batches, movements, now)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateKardexPDF_SinMovimientos(t *testing.T) {
	product := &entity.Product{ID: "p1", SKU: "X", Name: "Vacío", UnitsPerPackage: 1}
	out, err := pdf.NewKardexGenerator().GenerateKardexPDF(context.Background(), product, nil, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
