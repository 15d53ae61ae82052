package main

import (
	"time"

	"houseprice-heatmap/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// configure all middleware for the router
func (a *App) setupMiddleware() {
	a.Router.Use(gin.Recovery())
	a.Router.Use(setupCORS(a.Config.Server.AllowedOrigins))
	a.Router.Use(middleware.RequestID())
	a.Router.Use(middleware.MetricsMiddleware())
	a.Router.Use(middleware.LoggingMiddleware())
	a.Router.Use(middleware.RateLimitMiddleware(a.RateLimiter))
	a.Router.Use(middleware.SecureHeaders())
	a.Router.Use(middleware.ErrorHandler())
}

// configure CORS middleware; no configured origins means any origin
func setupCORS(allowedOrigins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}

	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour

	return cors.New(corsConfig)
}
