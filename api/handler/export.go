package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sianpdf/models"
)

// Export returns a handler for POST /api/v1/export.
//
// It runs the same extraction as Extract and answers with the export file
// itself as an attachment. Nothing is written on the server.
func Export(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		timing := func() models.TimingInfo {
			return models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		}

		req, ok := bindRequest(c)
		if !ok {
			return
		}

		resp, err := d.run(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, timing())
			return
		}
		if resp.Count == 0 {
			respondError(c, models.NewExtractError(models.ErrCodeNoLinks,
				"no PDF links found on this page", nil), resp.Timing)
			return
		}

		name, err := d.filename(req, resp.Mode)
		if err != nil {
			respondError(c, err, timing())
			return
		}

		payload := payloadFor(resp)
		var buf bytes.Buffer
		if err := d.Exporter.Write(&buf, payload); err != nil {
			respondError(c, err, timing())
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Header("X-Sianpdf-Count", strconv.Itoa(payload.Len()))
		if resp.CacheStatus != "" {
			c.Header("X-Sianpdf-Cache", resp.CacheStatus)
		}
		c.Data(http.StatusOK, payload.ContentType(), buf.Bytes())
	}
}
