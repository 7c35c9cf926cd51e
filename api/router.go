// Package api serves crawl progress and metrics while a run is in flight.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/use-agent/jobscout/api/handler"
	"github.com/use-agent/jobscout/api/middleware"
	"github.com/use-agent/jobscout/config"
	"github.com/use-agent/jobscout/crawler"
)

// NewRouter creates a configured Gin engine with the status routes.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if keys configured)
//
// Health and /metrics stay outside auth so health checks and scrapers always work.
func NewRouter(cfg config.StatusConfig, runID string, progress *crawler.Progress, gatherer prometheus.Gatherer, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(runID, progress, startTime))

	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.APIKeys))
	protected.GET("/progress", handler.Progress(progress))

	return r
}
