package main

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// stage prefix the mobile client was built against
const apiStage = "/dev"

//go:embed docs/swagger.json
var swaggerDoc []byte

// setupRoutes configures all routes
func (a *App) setupRoutes() {
	a.Router.GET("/health", a.HealthHandler.Health)
	a.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := a.Router.Group(apiStage)
	{
		api.POST("/", a.PriceHandler.GetPrices)
		api.POST("/pricesByYear", a.PriceHandler.GetPricesByYear)
	}

	a.setupDocRoutes()
}

// setupDocRoutes serves the API document and a Swagger UI pointed at it.
func (a *App) setupDocRoutes() {
	a.Router.GET("/swagger.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", swaggerDoc)
	})
	a.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger.json")))
}
