package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/richland-auto/inventory-api/internal/application/audit"
	"github.com/richland-auto/inventory-api/internal/application/auth"
	"github.com/richland-auto/inventory-api/internal/application/catalog"
	"github.com/richland-auto/inventory-api/internal/application/ledger"
	"github.com/richland-auto/inventory-api/internal/application/purchasing"
	"github.com/richland-auto/inventory-api/internal/application/reporting"
	"github.com/richland-auto/inventory-api/internal/domain/entity"
)

// RouterDeps carries everything the router wires up.
type RouterDeps struct {
	AuthUC      *auth.UseCase
	ProductUC   *catalog.ProductUseCase
	CategoryUC  *catalog.CategoryUseCase
	SupplierUC  *catalog.SupplierUseCase
	LedgerUC    *ledger.UseCase
	PurchaseUC  *purchasing.UseCase
	AuditUC     *audit.UseCase
	ExportUC    *reporting.ExportUseCase
	ImportUC    *reporting.ImportUseCase
	DashboardUC *reporting.DashboardUseCase
	JWTSecret   string
}

// Router registers the API routes. Every route except login sits behind
// the auth middleware; write routes additionally carry role gates matching
// the use case checks.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// catalog staff may create and edit catalog records
	catalogWrite := RequireRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStockManager)
	// receiving stock against an order and retiring products is narrower
	stockControl := RequireRole(entity.RoleOwner, entity.RoleStockManager)
	// the audit trail and reconciliation are management-only
	management := RequireRole(entity.RoleOwner, entity.RoleAdmin)

	// Auth (login public, the rest behind the middleware)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/register", RequireRole(entity.RoleOwner), authHandler.Register)
	protected.Post("/auth/change-password", authHandler.ChangePassword)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	transactionHandler := NewTransactionHandler(deps.LedgerUC)
	products.Post("/", catalogWrite, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", catalogWrite, productHandler.Update)
	products.Post("/:id/deactivate", stockControl, productHandler.Deactivate)
	products.Post("/:id/reactivate", stockControl, productHandler.Reactivate)
	products.Get("/:id/transactions", transactionHandler.ListByProduct)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", catalogWrite, categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Delete("/:id", catalogWrite, categoryHandler.Delete)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", catalogWrite, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", catalogWrite, supplierHandler.Update)

	// Stock ledger (any authenticated user records movements)
	transactions := protected.Group("/transactions")
	transactions.Post("/", transactionHandler.Record)
	transactions.Get("/", transactionHandler.List)

	// Reconciliation
	reconciliation := protected.Group("/reconciliation", management)
	reconciliation.Post("/", transactionHandler.ReconcileAll)
	reconciliation.Post("/products/:id", transactionHandler.ReconcileProduct)

	// Purchase orders
	orders := protected.Group("/purchase-orders")
	orderHandler := NewPurchaseOrderHandler(deps.PurchaseUC)
	orders.Post("/", catalogWrite, orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/items", catalogWrite, orderHandler.AddItem)
	orders.Delete("/:id/items/:itemId", catalogWrite, orderHandler.RemoveItem)
	orders.Post("/:id/submit", catalogWrite, orderHandler.Submit)
	orders.Post("/:id/cancel", catalogWrite, orderHandler.Cancel)
	orders.Post("/:id/complete", stockControl, orderHandler.Complete)

	// Audit trail
	auditGroup := protected.Group("/audit", management)
	auditHandler := NewAuditHandler(deps.AuditUC)
	auditGroup.Get("/", auditHandler.List)
	auditGroup.Get("/:entityType/:entityId/history", auditHandler.History)

	// Reports and dashboard
	reportHandler := NewReportHandler(deps.ExportUC, deps.ImportUC, deps.DashboardUC)
	protected.Get("/dashboard", reportHandler.Dashboard)
	reports := protected.Group("/reports")
	reports.Get("/inventory.csv", reportHandler.InventoryCSV)
	reports.Get("/transactions.csv", reportHandler.TransactionsCSV)
	reports.Get("/inventory.pdf", reportHandler.InventoryPDF)
	reports.Get("/movements.pdf", reportHandler.MovementsPDF)
	reports.Post("/import", catalogWrite, reportHandler.ImportProducts)
}
