// backend-go/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/procuresmart/backend-go/internal/api"
	"github.com/andresuchdata/procuresmart/backend-go/internal/config"
	"github.com/andresuchdata/procuresmart/backend-go/internal/metrics"
	"github.com/andresuchdata/procuresmart/backend-go/internal/service"
	"github.com/andresuchdata/procuresmart/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.New()
	}

	// Initialize services
	analysisService, err := service.FromConfig(context.Background(), cfg, recorder)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize analysis service")
	}

	services := &api.Services{AnalysisService: analysisService}
	if recorder != nil {
		services.Metrics = recorder.Handler()
	}

	// Initialize HTTP server
	router := api.NewRouter(services, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadMB:    cfg.Server.MaxUploadMB,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Bool("narrative", cfg.Narrative.Enabled).
			Bool("storage", analysisService.StorageEnabled()).
			Bool("drive", analysisService.DriveEnabled()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
