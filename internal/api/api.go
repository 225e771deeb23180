// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/procuresmart/backend-go/internal/api/handlers"
	"github.com/andresuchdata/procuresmart/backend-go/internal/api/middleware"
	"github.com/andresuchdata/procuresmart/backend-go/internal/service"
)

type Services struct {
	AnalysisService *service.AnalysisService
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

type RouterOptions struct {
	AllowedOrigins []string
	MaxUploadMB    int64
}

func NewRouter(services *Services, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	corsConfig := newCORSConfig(opts.AllowedOrigins)
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.GET("/metrics", gin.WrapH(services.Metrics))
	}

	if services.AnalysisService != nil {
		analysisHandler := handlers.NewAnalysisHandler(services.AnalysisService, opts.MaxUploadMB)

		apiGroup := router.Group("/api/v1")
		apiGroup.GET("/layout", analysisHandler.GetLayout)

		analysisGroup := apiGroup.Group("/analysis")
		{
			analysisGroup.POST("/upload", analysisHandler.UploadAnalysis)
			analysisGroup.POST("/upload/export", analysisHandler.ExportAnalysis)
			analysisGroup.POST("/records", analysisHandler.AnalyzeRecords)
			analysisGroup.POST("/objects", analysisHandler.AnalyzeObjects)
			analysisGroup.POST("/drive/:fileId", analysisHandler.AnalyzeDriveFile)
		}

		sourcesGroup := apiGroup.Group("/sources")
		{
			sourcesGroup.GET("/objects", analysisHandler.ListObjects)
			sourcesGroup.GET("/drive/files", analysisHandler.ListDriveFiles)
		}
	}

	return router
}

var defaultOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// newCORSConfig allows credentials only for an explicit origin list.
// A wildcard answers "*" and never sends credentials.
func newCORSConfig(allowed []string) cors.Config {
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	normalizedOrigins, allowAll := normalizeAllowedOrigins(allowed)
	switch {
	case allowAll:
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	case len(normalizedOrigins) > 0:
		corsConfig.AllowOrigins = normalizedOrigins
	}
	return corsConfig
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
