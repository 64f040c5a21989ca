package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"news-reader/internal/config"
	"news-reader/internal/proxy"
)

// NewRouter builds the proxy's gin engine.
func NewRouter(cfg *config.Config) *gin.Engine {
	// Initialize router
	r := gin.Default()

	newsService := proxy.NewNewsService(proxy.Options{
		BaseURL:       cfg.UpstreamBaseURL,
		AllowedParams: cfg.AllowedParams,
		APIKey:        cfg.APIKey,
		KeyHint:       cfg.KeyHint(),
	})

	// /api/news answers every method itself so that 405 and preflight carry
	// the fixed header set
	r.Any("/api/news", proxy.CORSHeaders(), newsService.GetNews)

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}

	api := r.Group("/api/v1")
	api.Use(cors.New(corsConfig))
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":        "healthy",
				"timestamp":     time.Now(),
				"keyConfigured": cfg.APIKey() != "",
			})
		})
	}

	return r
}
