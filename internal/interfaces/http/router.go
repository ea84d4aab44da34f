package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/finance"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/application/sales"
	"github.com/jhoicas/inventario-lotes/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Engine      *inventory.Engine
	Ledger      *inventory.Ledger
	Reports     *inventory.ReportUseCase
	ImportUC    *inventory.ImportUseCase
	ParseImport ImportParser
	SalesUC     *sales.UseCase
	AccountUC   *finance.AccountUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stockRoles := RequireRole(RoleAdmin, RoleBodeguero)
	salesRoles := RequireRole(RoleAdmin, RoleVendedor)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(RoleAdmin), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", RequireRole(RoleAdmin), productHandler.Update)
	products.Get("/:id/batches", productHandler.ListBatches)

	// Inventory: lotes, salidas directas, kardex e importaciones
	inv := api.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Engine, deps.Ledger, deps.Reports, deps.ImportUC, deps.ParseImport)
	inv.Post("/batches", stockRoles, invHandler.ReceiveBatch)
	inv.Post("/allocations", stockRoles, invHandler.Allocate)
	inv.Post("/import", stockRoles, invHandler.Import)
	inv.Get("/movements/export.xlsx", invHandler.ExportMovements)
	inv.Get("/movements", invHandler.ListMovements)
	inv.Get("/kardex/:product_id.pdf", invHandler.KardexPDF)

	// Sales orders
	orders := api.Group("/sales-orders")
	salesHandler := NewSalesHandler(deps.SalesUC)
	orders.Post("/", salesRoles, salesHandler.Create)
	orders.Get("/:id", salesHandler.GetByID)
	orders.Post("/:id/cancel", salesRoles, salesHandler.Cancel)
	orders.Post("/:id/deliver", stockRoles, salesHandler.Deliver)

	// Finance
	accounts := api.Group("/bank-accounts", RequireRole(RoleAdmin))
	financeHandler := NewFinanceHandler(deps.AccountUC)
	accounts.Post("/", financeHandler.CreateAccount)
	accounts.Get("/:id", financeHandler.GetAccount)
	accounts.Get("/:id/transactions", financeHandler.ListTransactions)
}
