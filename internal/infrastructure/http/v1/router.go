// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/movements"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/pkg/logger"
)

// RouterConfig holds the services behind the API.
type RouterConfig struct {
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	AuthService      *auth.Service
	Recorder         *movements.Recorder
	StockService     *stock.Service
	ReportService    *reports.Service
	ProductService   *product.Service
	WarehouseService *warehouse.Service

	// Mode is "postgres" or "memory"; HealthChecks are pinged by /health/ready.
	Mode         string
	HealthChecks map[string]handlers.Pinger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Mode, cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	api := router.Group("/api/v1")

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	authHandler.RegisterRoutes(api.Group("/auth"), protected.Group("/auth"))

	handlers.NewMovementsHandler(base, cfg.Recorder).RegisterRoutes(protected.Group("/movements"))
	handlers.NewStockHandler(base, cfg.StockService).RegisterRoutes(protected.Group("/stock"))
	handlers.NewReportsHandler(base, cfg.ReportService).RegisterRoutes(protected.Group("/reports"))

	catalogs := protected.Group("/catalog")
	handlers.NewProductHandler(base, cfg.ProductService).RegisterRoutes(catalogs.Group("/products"))
	catalogs.GET("/warehouses", handlers.NewWarehouseHandler(base, cfg.WarehouseService).List)

	return router
}
