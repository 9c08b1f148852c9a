package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-farmacia/internal/application/inventory"
	"github.com/jhoicas/Inventario-farmacia/internal/application/purchasing"
	"github.com/jhoicas/Inventario-farmacia/internal/application/usecase"
	"github.com/jhoicas/Inventario-farmacia/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC       *usecase.ProductUseCase
	WarehouseUC     *usecase.WarehouseUseCase
	SupplierUC      *usecase.SupplierUseCase
	AdjustmentUC    *inventory.AdjustmentUseCase
	StockUC         *inventory.StockUseCase
	PurchaseOrderUC *purchasing.PurchaseOrderUseCase
	JWTSecret       string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las mutaciones de catálogo,
// inventario y compras quedan para admin y bodeguero, las ventas y reservas también para vendedor.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	staff := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", RequireRole(jwt.RoleAdmin), warehouseHandler.Create)
	warehouses.Get("/", anyRole, warehouseHandler.List)
	warehouses.Get("/:id", anyRole, warehouseHandler.GetByID)

	// Suppliers
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", staff, supplierHandler.Create)
	suppliers.Get("/", anyRole, supplierHandler.List)
	suppliers.Get("/:id", anyRole, supplierHandler.GetByID)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", staff, productHandler.Create)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Put("/:id", staff, productHandler.Update)
	products.Delete("/:id", staff, productHandler.Deactivate)

	// Inventory
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustmentUC, deps.StockUC)
	inv.Post("/adjustments", staff, inventoryHandler.Adjust)
	inv.Get("/adjustments", staff, inventoryHandler.ListAdjustments)
	inv.Post("/sales", anyRole, inventoryHandler.RecordSale)
	inv.Post("/reservations", anyRole, inventoryHandler.Reserve)
	inv.Post("/reservations/release", anyRole, inventoryHandler.Release)
	inv.Get("/products/:id/stock", anyRole, inventoryHandler.GetStock)
	inv.Get("/products/:id/batches", anyRole, inventoryHandler.ListBatches)
	inv.Get("/products/:id/transactions", staff, inventoryHandler.ListTransactions)

	// Purchase orders
	orders := api.Group("/purchase-orders", staff)
	orderHandler := NewPurchaseOrderHandler(deps.PurchaseOrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/pdf", orderHandler.PDF)
	orders.Post("/:id/send", orderHandler.Send)
	orders.Post("/:id/confirm", orderHandler.Confirm)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Post("/:id/receive", orderHandler.Receive)
}
