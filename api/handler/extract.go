package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sianpdf/models"
)

// Extract returns a handler for POST /api/v1/extract.
//
// The body carries either a page URL or the page HTML. The response lists
// the references found; an empty list is still a success.
func Extract(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		req, ok := bindRequest(c)
		if !ok {
			return
		}

		resp, err := d.run(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, models.TimingInfo{TotalMs: time.Since(start).Milliseconds()})
			return
		}

		slog.Debug("extract completed",
			"mode", resp.Mode,
			"count", resp.Count,
			"source", resp.SourceURL,
			"cache", resp.CacheStatus,
		)
		c.JSON(http.StatusOK, resp)
	}
}
