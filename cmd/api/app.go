package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"houseprice-heatmap/internal/handlers"
	"houseprice-heatmap/internal/middleware"
	"houseprice-heatmap/internal/repositories"
	"houseprice-heatmap/internal/services"
	"houseprice-heatmap/internal/validators"
	"houseprice-heatmap/pkg/cache"
	"houseprice-heatmap/pkg/config"
	"houseprice-heatmap/pkg/landregistry"
	"houseprice-heatmap/pkg/logger"
	"houseprice-heatmap/pkg/metrics"
	"houseprice-heatmap/pkg/postcodes"

	"github.com/gin-gonic/gin"
)

// App represents the application structure
type App struct {
	Config        *config.Config
	Router        *gin.Engine
	PriceHandler  *handlers.PriceHandler
	HealthHandler *handlers.HealthHandler
	RateLimiter   *middleware.RateLimiter
	Store         cache.Store
	Server        *http.Server

	stopCleanup context.CancelFunc
}

// Create and initialize a new App instance
func NewApp(cfg *config.Config) *App {
	app := &App{Config: cfg}

	// Initialize infrastructure
	app.initializeCache()
	app.initializeMetrics()
	app.initializeRateLimiter()

	// Initialize business logic
	app.initializeDependencies()

	// Initialize web layer
	app.initializeRouter()

	return app
}

// initialize Redis, or the in-memory store when Redis is disabled
func (a *App) initializeCache() {
	store, err := cache.New(a.Config)
	if err != nil {
		logger.GlobalLogger.Errorf("Failed to initialize cache: %v", err)
		os.Exit(1)
	}
	a.Store = store
}

// initialize Prometheus metrics
func (a *App) initializeMetrics() {
	metrics.Init()
}

// initialize the rate limiter
func (a *App) initializeRateLimiter() {
	a.RateLimiter = middleware.NewRateLimiter(a.Config.Server.RateLimitPerMin, a.Config.Server.RateLimitBurst)
	ctx, cancel := context.WithCancel(context.Background())
	a.stopCleanup = cancel
	go a.RateLimiter.Cleanup(ctx, time.Hour)
}

// initialize all dependencies
func (a *App) initializeDependencies() {
	up := a.Config.Upstream

	// upstream clients
	postcodesClient := postcodes.NewClient(postcodes.Options{
		BaseURL:    up.PostcodesURL,
		Limit:      up.SearchLimit,
		Radius:     up.SearchRadius,
		Timeout:    up.Timeout,
		MaxRetries: up.MaxRetries,
		RetryDelay: time.Second,
	})
	registryClient := landregistry.NewClient(landregistry.Options{
		Endpoint:   up.LandRegistryURL,
		Timeout:    up.Timeout,
		MaxRetries: up.MaxRetries,
		RetryDelay: time.Second,
	})

	// repositories
	priceCache := repositories.NewPriceCache(a.Store)

	// services
	priceService := services.NewPriceService(postcodesClient, registryClient, priceCache, float64(up.SearchRadius), a.Config.Cache.TTL)

	// handlers
	a.PriceHandler = handlers.NewPriceHandler(priceService, validators.NewPositionValidator())
	a.HealthHandler = handlers.NewHealthHandler(priceCache)
}

// set up the Gin router with middleware and routes
func (a *App) initializeRouter() {
	a.Router = gin.New()
	a.setupMiddleware()
	a.setupRoutes()
}

// cleanup operations
func (a *App) cleanup() {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			logger.GlobalLogger.Errorf("Failed to close cache: %v", err)
		}
	}
}
