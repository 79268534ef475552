package main

import (
	"billing-service/internal/handler"
	mid "billing-service/internal/middleware"
	"billing-service/internal/store"
	"billing-service/pkg/config"
	"billing-service/pkg/database"
	"billing-service/pkg/logger"
	"billing-service/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file; missing is fine, env vars may be set by the
	// deployment environment instead.
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting billing-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Open the database; the handle is owned here and injected into the
	// stores, there is no process-wide session state.
	db, err := database.Open(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established",
		zap.String("driver", appConfig.DB.Driver))

	bills := store.NewBillStore(db)
	catalog := store.NewCatalogStore(db)

	// Seed the baseline catalog on a fresh database
	if err := catalog.SeedIfEmpty(); err != nil {
		log.Fatal("Failed to seed catalog", zap.Error(err))
	}

	billHandler := handler.NewBillHandler(bills)
	productHandler := handler.NewProductHandler(catalog)

	// Initialize Echo instance
	e := echo.New()
	e.Validator = handler.NewRequestValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(mid.MetricsMiddleware)

	// Routes
	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Bill editing routes
	billAPI := e.Group("/api/bills")
	billAPI.GET("/current", billHandler.GetCurrentBill)
	billAPI.POST("", billHandler.CreateBill)
	billAPI.POST("/:id/items", billHandler.AppendItem)
	billAPI.PATCH("/:id", billHandler.PatchBill)

	// Catalog admin routes
	productAPI := e.Group("/api/products")
	productAPI.GET("", productHandler.ListProducts)
	productAPI.GET("/:code", productHandler.GetProduct)
	productAPI.POST("", productHandler.CreateProduct)
	productAPI.PUT("/:code", productHandler.UpdateProduct)
	productAPI.DELETE("/:code", productHandler.DeleteProduct)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
