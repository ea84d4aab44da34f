package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-lotes/internal/application/finance"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/application/sales"
	"github.com/jhoicas/inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/importer"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/report"
	apphttp "github.com/jhoicas/inventario-lotes/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// buildAPI arma la API completa sobre el almacén en memoria.
func buildAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	log := zerolog.Nop()
	engine := inventory.NewEngine(store, lock.NewLocal(), inventory.EngineConfig{MaxRetries: 2}, log)
	ledger := inventory.NewLedger(store.Movements())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(store.Products(), store.Batches()),
		Engine:      engine,
		Ledger:      ledger,
		Reports:     inventory.NewReportUseCase(ledger, store.Products(), store.Batches(), pdf.NewKardexGenerator(), report.NewExcelExporter()),
		ImportUC:    inventory.NewImportUseCase(engine, store.Products(), log),
		ParseImport: importer.Parse,
		SalesUC:     sales.NewUseCase(engine, store.Orders(), log),
		AccountUC:   finance.NewAccountUseCase(store.Accounts(), store.Transactions()),
		JWTSecret:   testJWTSecret,
	})
	return app
}

// call envía un JSON con el rol indicado y decodifica la respuesta en out (si no es nil).
func call(t *testing.T, app *fiber.App, role, method, path string, body any, out any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// seedProduct crea un producto y le recibe lotes con las cantidades indicadas.
func seedProduct(t *testing.T, app *fiber.App, sku string, upp int, sellByUnit bool, quantities ...int) string {
	t.Helper()
	var p map[string]any
	resp := call(t, app, "admin", http.MethodPost, "/api/products", map[string]any{
		"sku": sku, "name": "Producto " + sku, "price": "1000", "unit_price": "120",
		"units_per_package": upp, "sell_by_unit": sellByUnit,
	}, &p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := p["id"].(string)
	for i, q := range quantities {
		resp := call(t, app, "bodeguero", http.MethodPost, "/api/inventory/batches", map[string]any{
			"product_id": id, "quantity": q, "cost_price": "700",
			"purchase_date": []string{"2024-05-01T00:00:00Z", "2024-05-02T00:00:00Z", "2024-05-03T00:00:00Z"}[i],
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_FIFOYStockInsuficiente(t *testing.T) {
	app := buildAPI(t)
	id := seedProduct(t, app, "GAS-500", 1, false, 3, 5)

	var alloc map[string]any
	resp := call(t, app, "bodeguero", http.MethodPost, "/api/inventory/allocations", map[string]any{
		"product_id": id, "quantity": 4, "unit_mode": "PAQUETE",
	}, &alloc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 4, alloc["packages_deducted"])
	assert.Len(t, alloc["allocations"], 2)

	var errBody map[string]any
	resp = call(t, app, "bodeguero", http.MethodPost, "/api/inventory/allocations", map[string]any{
		"product_id": id, "quantity": 5, "unit_mode": "PAQUETE",
	}, &errBody)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody["code"])
	assert.EqualValues(t, 4, errBody["available"])
	assert.Equal(t, "stock insuficiente: disponible 4 paquetes", errBody["message"])

	var p map[string]any
	call(t, app, "vendedor", http.MethodGet, "/api/products/"+id, nil, &p)
	assert.EqualValues(t, 4, p["package_quantity"], "la salida rechazada no cambia el stock")
}

func TestAllocate_ErroresDeDominio(t *testing.T) {
	app := buildAPI(t)
	id := seedProduct(t, app, "AGUA", 6, false, 2)

	var body map[string]any
	resp := call(t, app, "admin", http.MethodPost, "/api/inventory/allocations", map[string]any{
		"product_id": id, "quantity": 1, "unit_mode": "UNIDAD",
	}, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_UNIT_MODE", body["code"])

	resp = call(t, app, "admin", http.MethodPost, "/api/inventory/allocations", map[string]any{
		"product_id": "no-existe", "quantity": 1, "unit_mode": "PAQUETE",
	}, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", body["code"])

	resp = call(t, app, "admin", http.MethodPost, "/api/inventory/allocations", map[string]any{
		"product_id": id, "quantity": 0, "unit_mode": "PAQUETE",
	}, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestReceiveBatch_VendedorNoPuedeRecibir(t *testing.T) {
	app := buildAPI(t)
	id := seedProduct(t, app, "ARROZ", 1, false)

	resp := call(t, app, "vendedor", http.MethodPost, "/api/inventory/batches", map[string]any{
		"product_id": id, "quantity": 1, "cost_price": "10",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestListMovements_PaginaConCursor(t *testing.T) {
	app := buildAPI(t)
	id := seedProduct(t, app, "SAL", 1, false, 1, 1, 1)

	seen := map[string]bool{}
	path := "/api/inventory/movements?limit=2&product_id=" + id
	for pages := 0; pages < 5; pages++ {
		var page struct {
			Items []struct {
				ID   string `json:"id"`
				Kind string `json:"kind"`
			} `json:"items"`
			Next string `json:"next"`
		}
		resp := call(t, app, "admin", http.MethodGet, path, nil, &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		for _, m := range page.Items {
			assert.False(t, seen[m.ID], "movimiento repetido entre páginas")
			seen[m.ID] = true
			assert.Equal(t, "COMPRA", m.Kind)
		}
		if page.Next == "" {
			break
		}
		path = "/api/inventory/movements?limit=2&product_id=" + id + "&after=" + page.Next
	}
	assert.Len(t, seen, 3)

	resp := call(t, app, "admin", http.MethodGet, "/api/inventory/movements?after=***", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = call(t, app, "admin", http.MethodGet, "/api/inventory/movements?from=2024-05-10&to=2024-05-01", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReportes_PDFYExcel(t *testing.T) {
	app := buildAPI(t)
	id := seedProduct(t, app, "CAFE", 1, false, 2)

	resp := call(t, app, "admin", http.MethodGet, "/api/inventory/kardex/"+id+".pdf", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "kardex_CAFE.pdf")

	resp = call(t, app, "admin", http.MethodGet, "/api/inventory/movements/export.xlsx?product_id="+id, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(raw[:2]), "un .xlsx es un zip")

	resp = call(t, app, "admin", http.MethodGet, "/api/inventory/kardex/no-existe.pdf", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImport_ArchivoXML(t *testing.T) {
	app := buildAPI(t)
	seedProduct(t, app, "GAS-500", 1, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "compras.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`<lotes>
  <lote sku="GAS-500" fecha="2024-03-01" cantidad="3" costo="1200"/>
  <lote sku="NO-EXISTE" fecha="2024-03-01" cantidad="1" costo="10"/>
</lotes>`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, "bodeguero"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep inventory.ImportReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, 1, rep.Imported)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, "compras.xml", rep.Source)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos y finanzas
// ──────────────────────────────────────────────────────────────────────────────

func TestSalesOrder_CrearAnularYNoDosVeces(t *testing.T) {
	app := buildAPI(t)
	id := seedProduct(t, app, "LECHE", 10, true, 2)

	var order map[string]any
	resp := call(t, app, "vendedor", http.MethodPost, "/api/sales-orders", map[string]any{
		"customer_name": "Doña Marta",
		"lines":         []map[string]any{{"product_id": id, "quantity": 15, "unit_mode": "UNIDAD"}},
	}, &order)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "CONFIRMADO", order["status"])
	orderID := order["id"].(string)

	var p map[string]any
	call(t, app, "admin", http.MethodGet, "/api/products/"+id, nil, &p)
	assert.EqualValues(t, 0, p["package_quantity"])
	assert.EqualValues(t, 5, p["units_available"])

	resp = call(t, app, "vendedor", http.MethodPost, "/api/sales-orders/"+orderID+"/cancel", nil, &order)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ANULADO", order["status"])

	call(t, app, "admin", http.MethodGet, "/api/products/"+id, nil, &p)
	assert.EqualValues(t, 2, p["package_quantity"])
	assert.EqualValues(t, 0, p["units_available"])

	var body map[string]any
	resp = call(t, app, "vendedor", http.MethodPost, "/api/sales-orders/"+orderID+"/cancel", nil, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ORDER_NOT_CANCELLABLE", body["code"])

	resp = call(t, app, "vendedor", http.MethodGet, "/api/sales-orders/no-existe", nil, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBankAccounts_SoloAdmin(t *testing.T) {
	app := buildAPI(t)

	resp := call(t, app, "vendedor", http.MethodPost, "/api/bank-accounts", map[string]any{"name": "Caja"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var acc map[string]any
	resp = call(t, app, "admin", http.MethodPost, "/api/bank-accounts", map[string]any{
		"name": "Caja", "opening_balance": "1500",
	}, &acc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var list map[string]any
	resp = call(t, app, "admin", http.MethodGet, "/api/bank-accounts/"+acc["id"].(string)+"/transactions", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, list["items"])
}
