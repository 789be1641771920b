package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/tienda-pos/internal/application/sales"
	"github.com/jhoicas/tienda-pos/internal/application/stock"
	"github.com/jhoicas/tienda-pos/internal/application/usecase"
	"github.com/jhoicas/tienda-pos/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	CustomerUC *usecase.CustomerUseCase
	LedgerUC   *usecase.LedgerUseCase
	Sales      *sales.QuickSaleUseCase
	Engine     *stock.Engine
	JWTSecret  string
	// Metrics exposición Prometheus en /metrics; nil = sin endpoint.
	Metrics http.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// Todas las rutas /api requieren Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	stockRoles := RequireRole(jwt.RoleBodeguero)
	saleRoles := RequireRole(jwt.RoleVendedor)
	adminOnly := RequireRole()

	// Products: lectura para todos los roles, escritura solo admin
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.Search)
	products.Get("/code/:code", productHandler.FindByCode)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Sales
	salesGroup := api.Group("/sales", saleRoles)
	saleHandler := NewSaleHandler(deps.Sales)
	salesGroup.Post("/quick", saleHandler.Quick)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	// Inflows / outflows
	ledgerHandler := NewLedgerHandler(deps.Engine, deps.LedgerUC)
	inflows := api.Group("/inflows", stockRoles)
	inflows.Post("/bulk", ledgerHandler.BulkInflow)
	inflows.Post("/", ledgerHandler.Inflow)
	inflows.Get("/", ledgerHandler.ListInflows)

	outflows := api.Group("/outflows", stockRoles)
	outflows.Post("/adjustments", ledgerHandler.Adjustment)
	outflows.Get("/", ledgerHandler.ListOutflows)

	// Customers (lookup de caja)
	customers := api.Group("/customers", saleRoles)
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/search", customerHandler.Search)
}
