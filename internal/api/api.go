// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/plannink/forecast-api/internal/api/handlers"
	"github.com/plannink/forecast-api/internal/api/middleware"
	"github.com/plannink/forecast-api/internal/ingest"
	"github.com/plannink/forecast-api/internal/service"
)

type Services struct {
	ForecastService *service.ForecastService
	IngestService   *ingest.Service
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ForecastService != nil {
		handler := handlers.NewForecastHandler(services.ForecastService, services.IngestService)

		productsGroup := apiGroup.Group("/products")
		{
			productsGroup.GET("", handler.ListProducts)
			productsGroup.GET("/summary", handler.GetStatusSummary)
			productsGroup.GET("/:code", handler.GetProduct)
			productsGroup.GET("/:code/projections", handler.GetProjections)
			productsGroup.GET("/:code/projections/weekly", handler.GetWeeklyProjections)
			productsGroup.GET(":code/stockout_risk", handler.GetStockoutRisk)
			productsGroup.POST("/:code/transit/units", handler.ApplyTransitUnits)
			productsGroup.POST("/:code/transit/days", handler.ApplyTransitDays)
		}

		apiGroup.POST("/recalculate", handler.Recalculate)
		apiGroup.POST("/upload", handler.Upload)
		apiGroup.GET("/uploads", handler.ListUploads)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
