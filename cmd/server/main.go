// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/api"
	"github.com/andresuchdata/pomonitor/backend-go/internal/cache"
	"github.com/andresuchdata/pomonitor/backend-go/internal/config"
	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/repository/sqlstore"
	"github.com/andresuchdata/pomonitor/backend-go/internal/service"
	"github.com/andresuchdata/pomonitor/backend-go/internal/storage"
	"github.com/andresuchdata/pomonitor/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.App.LogLevel, cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := sqlstore.NewDB(startCtx, &cfg.Database)
	cancelStart()
	if err != nil {
		logger.Log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to connect to database")
	}
	defer db.Close()

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("dashboard cache unavailable, continuing without cache")
		dashboardCache = cache.NewNoopDashboardCache()
	}

	var reportStore storage.ObjectStorage
	if cfg.Storage.Enabled() {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("report storage unavailable, publishing disabled")
		} else {
			reportStore = client
		}
	}

	// Initialize services
	loc := cfg.App.Location()
	poService := service.NewPOService(
		sqlstore.NewPORepository(db),
		dashboardCache,
		func() domain.Date { return domain.Today(loc) },
	)
	reportService := service.NewReportService(poService, reportStore, cfg.Storage.Prefix)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		POService:     poService,
		ReportService: reportService,
	}, cfg.Server.AllowedOrigins)
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
			Str("driver", cfg.Database.Driver).
			Str("timezone", loc.String()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
