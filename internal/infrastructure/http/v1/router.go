// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/domain/payments"
	"backoffice/internal/infrastructure/http/v1/dto"
	"backoffice/internal/infrastructure/http/v1/handlers"
	"backoffice/internal/infrastructure/http/v1/middleware"
	"backoffice/pkg/logger"
)

// RouterConfig holds the dependencies of the API.
type RouterConfig struct {
	Logger *logger.Logger

	// DB is checked by /health/ready. Cache is reported there when set.
	DB    handlers.Pinger
	Cache handlers.Pinger

	// Idempotency guards sale and return registration. Nil disables it.
	Idempotency middleware.IdempotencyStore

	Products  handlers.ProductService
	Stock     handlers.StockService
	Sellers   handlers.SellerService
	Sales     handlers.SaleService
	Invoices  handlers.InvoiceService
	Returns   handlers.ReturnService
	Payments  *payments.Service
	Dashboard handlers.DashboardService
}

// NewRouter creates the gin engine with every route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Order matters: ErrorHandler must wrap Recovery to render recovered panics.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	health := handlers.NewHealthHandler(cfg.DB, cfg.Cache)
	router.GET("/health/live", health.Live)
	router.GET("/health/ready", health.Ready)

	api := router.Group("/api/v1")
	base := handlers.NewBaseHandler()

	var guard []gin.HandlerFunc
	if cfg.Idempotency != nil {
		guard = append(guard, middleware.Idempotency(cfg.Idempotency))
	}

	registerInventoryRoutes(api, base, cfg)
	registerSellerRoutes(api, base, cfg)
	registerDocumentRoutes(api, base, cfg, guard)
	registerPaymentRoutes(api, base, cfg)

	dashboard := handlers.NewDashboardHandler(base, cfg.Dashboard)
	api.GET("/dashboard", dashboard.Get)

	return router
}

func registerInventoryRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	products := handlers.NewProductHandler(base, cfg.Products)
	stock := handlers.NewInventoryHandler(base, cfg.Stock)

	group := api.Group("/products")
	RegisterCRUDRoutes(group, products)
	group.GET("/:id/lots", stock.Lots)
	group.POST("/:id/receipts", stock.Receive)
	group.GET("/:id/audit", stock.ProductAudit)
	api.GET("/brands", products.Brands)

	inv := api.Group("/inventory")
	inv.GET("/low-stock", stock.LowStock)
	inv.GET("/expiring", stock.Expiring)
	inv.GET("/expired", stock.Expired)
	inv.GET("/audit", stock.Audit)
	inv.POST("/backfill", stock.Backfill)
}

func registerSellerRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewSellerHandler(base, cfg.Sellers)

	group := api.Group("/sellers")
	RegisterCRUDRoutes(group, h)
	group.GET("/:id/commissions", h.Commissions)
	group.PUT("/:id/commissions", h.SetCommission)
	group.DELETE("/:id/commissions/:commissionId", h.DeleteCommission)
	group.GET("/:id/statement", h.Statement)
	api.GET("/statements", h.Statements)
}

func registerDocumentRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig, guard []gin.HandlerFunc) {
	sales := handlers.NewSaleHandler(base, cfg.Sales, cfg.Invoices)
	group := api.Group("/sales")
	group.GET("", sales.List)
	group.POST("", append(guard, sales.Create)...)
	group.GET("/:id", sales.Get)
	group.DELETE("/:id", sales.Delete)
	group.GET("/:id/invoice", sales.Invoice)

	RegisterCRUDRoutes(api.Group("/returns"), handlers.NewReturnHandler(base, cfg.Returns), guard...)
}

func registerPaymentRoutes(api *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	RegisterCRUDRoutes(api.Group("/seller-payments"), handlers.NewEntryHandler(base,
		handlers.EntryHandlerConfig[*payments.SellerPayment, dto.SellerPaymentRequest]{
			Service:   cfg.Payments.SellerPayments,
			MapCreate: dto.SellerPaymentRequest.ToDomain,
			MapUpdate: dto.SellerPaymentRequest.ApplyTo,
		}))
	RegisterCRUDRoutes(api.Group("/bonuses"), handlers.NewEntryHandler(base,
		handlers.EntryHandlerConfig[*payments.Bonus, dto.BonusRequest]{
			Service:   cfg.Payments.Bonuses,
			MapCreate: dto.BonusRequest.ToDomain,
			MapUpdate: dto.BonusRequest.ApplyTo,
		}))
	RegisterCRUDRoutes(api.Group("/supplier-payments"), handlers.NewEntryHandler(base,
		handlers.EntryHandlerConfig[*payments.SupplierPayment, dto.SupplierPaymentRequest]{
			Service:   cfg.Payments.SupplierPayments,
			MapCreate: dto.SupplierPaymentRequest.ToDomain,
			MapUpdate: dto.SupplierPaymentRequest.ApplyTo,
		}))
	RegisterCRUDRoutes(api.Group("/expenses"), handlers.NewEntryHandler(base,
		handlers.EntryHandlerConfig[*payments.Expense, dto.ExpenseRequest]{
			Service:   cfg.Payments.Expenses,
			MapCreate: dto.ExpenseRequest.ToDomain,
			MapUpdate: dto.ExpenseRequest.ApplyTo,
		}))
}
