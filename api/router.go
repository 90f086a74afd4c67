package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sianpdf/api/handler"
	"github.com/use-agent/sianpdf/api/middleware"
	"github.com/use-agent/sianpdf/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     BodyLimit → Auth (if enabled) → RateLimit
//
// Health sits outside auth so monitoring probes always work.
func NewRouter(d *handler.Deps, bs handler.BrowserStatus, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(bs, startTime))

	protected := v1.Group("")
	protected.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/extract", handler.Extract(d))
	protected.POST("/export", handler.Export(d))

	return r
}
