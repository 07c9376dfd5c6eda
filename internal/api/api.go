// internal/api/api.go
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/api/handlers"
	"github.com/andresuchdata/pomonitor/backend-go/internal/api/middleware"
	"github.com/andresuchdata/pomonitor/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Services struct {
	POService     *service.POService
	ReportService *service.ReportService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
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

	router.GET("/health", healthHandler(services))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.POService != nil {
		reportService := services.ReportService
		if reportService == nil {
			reportService = service.NewReportService(services.POService, nil, "")
		}

		poHandler := handlers.NewPOHandler(services.POService, reportService)
		poGroup := apiGroup.Group("/po")
		{
			poGroup.POST("", poHandler.CreatePO)
			poGroup.GET("", poHandler.ListPOs)
			poGroup.GET("/statuses", poHandler.GetStatuses)
			poGroup.GET("/sales_engineers", poHandler.GetSalesEngineers)
			poGroup.GET("/export", poHandler.ExportCSV)
			poGroup.GET("/:id", poHandler.GetPO)
			poGroup.PATCH("/:id", poHandler.UpdatePO)
			poGroup.DELETE("/:id", poHandler.DeletePO)

			// Dashboard routes
			dashboardGroup := poGroup.Group("/analytics")
			{
				dashboardGroup.GET("/summary", poHandler.GetDashboardSummary)
				dashboardGroup.GET("/years", poHandler.GetYears)
			}

			reportGroup := poGroup.Group("/reports")
			{
				reportGroup.GET("", poHandler.ListReports)
				reportGroup.POST("", poHandler.PublishReport)
			}
		}
	}

	return router
}

func healthHandler(services *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if services == nil || services.POService == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := services.POService.Ping(ctx); err != nil {
			errorResponse(c, http.StatusServiceUnavailable, "database unavailable: "+err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "today": services.POService.Today()})
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
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
