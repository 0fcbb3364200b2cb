package api

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stevehedden/kgcatalog/internal/catalog"
	"github.com/stevehedden/kgcatalog/internal/handlers"
	"github.com/stevehedden/kgcatalog/internal/middleware"
	"github.com/stevehedden/kgcatalog/web"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(svc *catalog.Service, rateStore middleware.RateStore) (*gin.Engine, error) {
	if svc == nil {
		return nil, fmt.Errorf("catalog service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(rateStore, 100, time.Minute))

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	resourceHandler := handlers.NewResourceHandler(svc)

	api := r.Group("/api/catalog")
	{
		api.GET("/resources", resourceHandler.List)
		api.POST("/refresh", resourceHandler.Refresh)
	}

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Embedded catalog UI with JSON fallback for unknown API routes
	staticFS, err := web.FS()
	if err != nil {
		return nil, fmt.Errorf("load embedded frontend: %w", err)
	}
	r.NoRoute(frontendFallback(staticFS))

	return r, nil
}

// frontendFallback serves the embedded single-page UI for non-API paths and a
// JSON 404 for everything under /api.
func frontendFallback(staticFS fs.FS) gin.HandlerFunc {
	fileServer := http.FileServer(http.FS(staticFS))

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/api" {
			middleware.NotFoundHandler(c)
			return
		}

		name := strings.TrimPrefix(path, "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(staticFS, name); err != nil {
			// Unknown paths fall back to the table page.
			c.Request.URL.Path = "/"
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
