package v1

import (
	"github.com/gin-gonic/gin"

	"marketbill/internal/app"
	"marketbill/internal/infrastructure/http/v1/handlers"
	"marketbill/internal/infrastructure/http/v1/middleware"
	"marketbill/internal/infrastructure/metrics"
	"marketbill/internal/infrastructure/storage/postgres"
	"marketbill/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Services serve the API endpoints
	Services *app.Services

	// Metrics is optional; when set, requests are instrumented and MetricsPath is exposed
	Metrics     *metrics.Metrics
	MetricsPath string

	// Pool is nil for the memory driver
	Pool   *postgres.Pool
	Driver string

	// CORSOrigins lists allowed origins, empty allows all
	CORSOrigins []string

	// Currency is printed on invoice documents
	Currency string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Actor())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Driver)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(cfg.Metrics.Handler()))
	}

	registerAPIRoutes(router.Group("/api/v1"), cfg)

	return router
}

func registerAPIRoutes(api *gin.RouterGroup, cfg RouterConfig) {
	svc := cfg.Services
	base := handlers.NewBaseHandler()

	// --- Catalogs ---
	RegisterCatalogRoutes(api.Group("/markets"), handlers.NewMarketHandler(base, svc.Markets))
	RegisterCatalogRoutes(api.Group("/shops"), handlers.NewShopHandler(base, svc.Shops))
	RegisterCatalogRoutes(api.Group("/meters"), handlers.NewMeterHandler(base, svc.Meters))
	RegisterCatalogRoutes(api.Group("/tariffs"), handlers.NewTariffHandler(base, svc.Tariffs))

	// --- Documents ---
	RegisterCatalogRoutes(api.Group("/readings"), handlers.NewReadingHandler(base, svc.Readings))
	RegisterCatalogRoutes(api.Group("/monthly-costs"), handlers.NewMonthlyCostHandler(base, svc.Costs))

	// --- Billing ---
	billingHandler := handlers.NewBillingHandler(base, svc.Billing, svc.Runs)
	bill := api.Group("/billing")
	{
		bill.POST("/compute", billingHandler.Compute)
		bill.GET("/runs", billingHandler.Runs)
	}

	// --- Invoices ---
	invoiceHandler := handlers.NewInvoiceHandler(base, svc.Invoices, svc.Shops, svc.Markets, cfg.Currency)
	inv := api.Group("/invoices")
	{
		inv.GET("", invoiceHandler.List)
		inv.GET("/:id", invoiceHandler.Get)
		inv.GET("/:id/items", invoiceHandler.Items)
		inv.GET("/:id/pdf", invoiceHandler.PDF)
		inv.POST("/:id/lock", invoiceHandler.Lock)
		inv.POST("/:id/unlock", invoiceHandler.Unlock)
		inv.PUT("/:id/status", invoiceHandler.SetStatus)
		inv.POST("/:id/items/:itemType/override", invoiceHandler.OverrideItem)
		inv.GET("/:id/adjustments", invoiceHandler.ListAdjustments)
		inv.POST("/:id/adjustments", invoiceHandler.AddAdjustment)
		inv.DELETE("/:id/adjustments/:adjustmentId", invoiceHandler.DeleteAdjustment)
	}

	// --- Reports ---
	reportsHandler := handlers.NewReportsHandler(base, svc.Reports, svc.Markets)
	rep := api.Group("/reports")
	{
		rep.GET("/market-summary", reportsHandler.MarketSummary)
		rep.GET("/reading-status", reportsHandler.ReadingStatus)
		rep.GET("/invoices", reportsHandler.InvoiceTable)
		rep.GET("/invoices.xlsx", reportsHandler.InvoiceTableXLSX)
	}
}
