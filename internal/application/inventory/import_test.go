package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
)

func TestImport_FilasValidasEInvalidas(t *testing.T) {
	f := newFixture(t)
	f.product(t, "p1", 12, true)
	uc := inventory.NewImportUseCase(f.engine, f.store.Products(), zerolog.Nop())

	report, err := uc.Import(context.Background(), "compras.xlsx", []inventory.ImportRow{
		{Line: 2, SKU: "SKU-p1", PurchaseDate: t0, Quantity: 4, CostPrice: decimal.NewFromInt(900)},
		{Line: 3, SKU: "NO-EXISTE", Quantity: 1},
		{Line: 4, SKU: "SKU-p1", Quantity: 0},
		{Line: 5, SKU: " SKU-p1 ", PurchaseDate: t0.AddDate(0, 0, 1), Quantity: 2, CostPrice: decimal.NewFromInt(1200)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 3, report.Errors[0].Line)
	assert.Equal(t, 4, report.Errors[1].Line)

	p := f.get(t, "p1")
	assert.Equal(t, 6, p.PackageQuantity)
	assert.True(t, p.Cost.Equal(decimal.NewFromInt(1000)), "promedio ponderado de 4x900 y 2x1200: %s", p.Cost)
	assert.Equal(t, []int{4, 2}, f.remaining(t, "p1"))

	movs := f.movements(t, "p1")
	require.Len(t, movs, 2)
	assert.Equal(t, "compras.xlsx#5", movs[0].Reference)
	f.assertConservation(t, "p1")
}

func TestImport_SinFilas(t *testing.T) {
	f := newFixture(t)
	uc := inventory.NewImportUseCase(f.engine, f.store.Products(), zerolog.Nop())
	_, err := uc.Import(context.Background(), "vacio.xml", nil)
	assert.Error(t, err)
}
