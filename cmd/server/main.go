// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plannink/forecast-api/internal/api"
	"github.com/plannink/forecast-api/internal/cache"
	"github.com/plannink/forecast-api/internal/config"
	"github.com/plannink/forecast-api/internal/ingest"
	"github.com/plannink/forecast-api/internal/repository"
	"github.com/plannink/forecast-api/internal/repository/postgres"
	"github.com/plannink/forecast-api/internal/service"
	"github.com/plannink/forecast-api/internal/storage"
	"github.com/plannink/forecast-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	projectionCache, err := cache.NewProjectionCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		projectionCache = cache.NewNoopProjectionCache()
	}

	var archive storage.ObjectStorage
	if cfg.Archive.Endpoint != "" {
		archive, err = storage.NewArchiveStore(cfg.Archive)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Archive unavailable, uploads will not be kept")
			archive = nil
		}
	}

	productRepo := repository.NewProductRepository(db.DB)
	ingestRepo := repository.NewIngestRepository(db.DB.DB)

	forecastService := service.NewForecastService(productRepo, projectionCache, cfg.DomainPlanning())
	ingestService := ingest.NewService(ingestRepo, archive)

	router := api.NewRouter(&api.Services{
		ForecastService: forecastService,
		IngestService:   ingestService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
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
