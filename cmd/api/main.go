package main

import (
	"houseprice-heatmap/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := LoadConfiguration()
	if logger.ParseLevel(cfg.Log.Level) != logger.DEBUG {
		gin.SetMode(gin.ReleaseMode)
	}

	app := NewApp(cfg)
	app.Run()
}
