package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"houseprice-heatmap/pkg/logger"
)

// Run serves until SIGINT/SIGTERM, then shuts down within the configured timeout.
func (a *App) Run() {
	defer a.cleanup()

	addr := fmt.Sprintf(":%d", a.Config.Server.Port)
	a.Server = &http.Server{
		Addr:    addr,
		Handler: a.Router,
	}

	go func() {
		logger.GlobalLogger.Printf("Starting server on %s", addr)
		logger.GlobalLogger.Printf("Swagger UI available at: http://localhost%s/swagger/index.html", addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.GlobalLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GlobalLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil {
		logger.GlobalLogger.Errorf("Server forced to shutdown: %v", err)
		return
	}
	logger.GlobalLogger.Println("Server exited")
}
