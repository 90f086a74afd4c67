package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sianpdf/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// BrowserStatus reports headless page usage. *browser.Browser satisfies it.
type BrowserStatus interface {
	ActivePages() int
	MaxPages() int
}

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when more than 80% of browser pages are busy. bs is nil
// when the server runs without a browser.
func Health(bs BrowserStatus, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if bs != nil {
			if maxPages := bs.MaxPages(); maxPages > 0 && bs.ActivePages() > int(float64(maxPages)*0.8) {
				status = "degraded"
			}
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Browser: bs != nil,
			Version: Version,
		})
	}
}
