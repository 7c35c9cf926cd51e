package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/jobscout/crawler"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status   string           `json:"status"` // "running" or "idle"
	RunID    string           `json:"run_id"`
	Uptime   string           `json:"uptime"`
	Progress crawler.Snapshot `json:"progress"`
	Version  string           `json:"version"`
}

// Health returns a handler for GET /api/v1/health.
//
// Reports "idle" until the crawler has entered its first list.
func Health(runID string, progress *crawler.Progress, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := progress.Snapshot()

		status := "running"
		if snap.List == 0 {
			status = "idle"
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:   status,
			RunID:    runID,
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			Progress: snap,
			Version:  Version,
		})
	}
}

// Progress returns a handler for GET /api/v1/progress.
func Progress(progress *crawler.Progress) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, progress.Snapshot())
	}
}
