// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/patentops/disclosure-api/internal/config"
	"github.com/patentops/disclosure-api/internal/extraction"
	"github.com/patentops/disclosure-api/internal/handlers"
	"github.com/patentops/disclosure-api/internal/middleware"
	"github.com/patentops/disclosure-api/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config, storageService *services.StorageService) *gin.Engine {
	// The model-based segmenter is the better strategy when a key is
	// configured; the heuristic one keeps extraction working without it.
	var segmenter extraction.Segmenter
	if cfg.OpenAI.APIKey != "" {
		segmenter = extraction.NewOpenAISegmenter(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		segmenter = extraction.NewHeuristicSegmenter()
	}
	extractor := extraction.NewExtractor(segmenter, cfg.Extraction.MinTextChars)

	// Initialize services
	docketService := services.NewDocketService(db)
	disclosureService := services.NewDisclosureService(db, docketService, extractor, storageService)
	exportService := services.NewExportService(db, disclosureService)

	// Initialize handlers
	disclosureHandler := handlers.NewDisclosureHandler(
		disclosureService,
		exportService,
		time.Duration(cfg.Extraction.TimeoutSeconds)*time.Second,
	)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Frontend.BaseURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		disclosures := v1.Group("/disclosures")
		{
			disclosures.POST("/upload", middleware.UploadRateLimit(), disclosureHandler.Upload)
			disclosures.GET("", disclosureHandler.List)
			disclosures.GET("/export/csv", disclosureHandler.ExportCSV)
			disclosures.GET("/:id", disclosureHandler.Get)
			disclosures.PATCH("/:id", disclosureHandler.Update)
			disclosures.DELETE("/:id", disclosureHandler.Delete)
			disclosures.GET("/:id/pdf", disclosureHandler.DownloadPDF)
		}
	}

	return r
}
