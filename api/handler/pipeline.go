package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/sianpdf/cache"
	"github.com/use-agent/sianpdf/config"
	"github.com/use-agent/sianpdf/engine"
	"github.com/use-agent/sianpdf/exporter"
	"github.com/use-agent/sianpdf/extractor"
	"github.com/use-agent/sianpdf/models"
)

// Fetcher retrieves a page for URL requests. *engine.Dispatcher satisfies it.
type Fetcher interface {
	Dispatch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)
}

// Deps bundles what the extract and export handlers share.
type Deps struct {
	Extractor *extractor.Extractor
	Exporter  *exporter.Exporter

	// Fetcher is nil when URL input is disabled.
	Fetcher Fetcher

	// Cache is optional.
	Cache *cache.Cache

	Fetch  config.FetchConfig
	Export config.ExportConfig
}

// run executes one extraction: fetch when a URL is given, then extract.
//
// A cached response is returned as a copy, so callers may change it.
func (d *Deps) run(ctx context.Context, req *models.ExtractRequest) (*models.ExtractResponse, error) {
	totalStart := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	if req.HTML != "" {
		extractStart := time.Now()
		res, err := d.Extractor.ExtractString(req.HTML, mode)
		if err != nil {
			return nil, err
		}
		resp := newResponse(res)
		resp.Timing = models.TimingInfo{
			TotalMs:      time.Since(totalStart).Milliseconds(),
			ExtractionMs: time.Since(extractStart).Milliseconds(),
		}
		return resp, nil
	}

	if d.Fetcher == nil {
		return nil, models.NewExtractError(models.ErrCodeInvalidInput,
			"url input is disabled on this server; send html instead", nil)
	}

	useCache := d.Cache != nil && req.MaxAge > 0
	cacheKey := cache.Key(req.URL, mode)
	if useCache {
		if cached, hit := d.Cache.Get(cacheKey, req.MaxAge); hit {
			resp := *cached
			resp.CacheStatus = "hit"
			resp.Timing = models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}
			return &resp, nil
		}
	}

	timeout := time.Duration(req.Timeout) * time.Second
	if d.Fetch.MaxTimeout > 0 && timeout > d.Fetch.MaxTimeout {
		timeout = d.Fetch.MaxTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fetchStart := time.Now()
	page, err := d.Fetcher.Dispatch(fetchCtx, &engine.FetchRequest{
		URL:     req.URL,
		Timeout: timeout,
		Stealth: req.Stealth,
	})
	fetchMs := time.Since(fetchStart).Milliseconds()
	if err != nil {
		return nil, fetchError(err)
	}

	extractStart := time.Now()
	res, err := d.Extractor.ExtractString(page.HTML, mode)
	if err != nil {
		return nil, err
	}

	resp := newResponse(res)
	resp.SourceURL = page.FinalURL
	resp.EngineUsed = page.EngineName
	resp.Timing = models.TimingInfo{
		TotalMs:      time.Since(totalStart).Milliseconds(),
		FetchMs:      fetchMs,
		ExtractionMs: time.Since(extractStart).Milliseconds(),
	}

	if useCache {
		stored := *resp
		d.Cache.Set(cacheKey, &stored)
		resp.CacheStatus = "miss"
	}
	return resp, nil
}

// filename picks the attachment name for an export.
func (d *Deps) filename(req *models.ExtractRequest, mode models.Mode) (string, error) {
	name := req.Filename
	if name == "" {
		switch {
		case mode == models.ModePaths && d.Export.PathsFilename != "":
			name = d.Export.PathsFilename
		case mode == models.ModeLinks && d.Export.LinksFilename != "":
			name = d.Export.LinksFilename
		default:
			name = exporter.DefaultFilename(mode)
		}
	}
	return exporter.SanitizeFilename(name)
}

func newResponse(res extractor.Result) *models.ExtractResponse {
	resp := &models.ExtractResponse{
		Success: true,
		Mode:    res.Mode,
		Count:   res.Len(),
	}
	if res.Mode == models.ModePaths {
		resp.Paths = res.Paths
	} else {
		resp.Items = res.Items
	}
	return resp
}

// payloadFor rebuilds the export payload from a response, cached or not.
func payloadFor(resp *models.ExtractResponse) exporter.Payload {
	if resp.Mode == models.ModePaths {
		return exporter.TextPayload(resp.Paths)
	}
	return exporter.JSONPayload(resp.Items)
}

// fetchError keeps typed errors from the browser and classifies the rest.
func fetchError(err error) *models.ExtractError {
	var extractErr *models.ExtractError
	if errors.As(err, &extractErr) {
		return extractErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewExtractError(models.ErrCodeTimeout, "timed out fetching page", err)
	}
	return models.NewExtractError(models.ErrCodeFetch, "failed to fetch page", err)
}

// bindRequest parses the JSON body and applies defaults.
func bindRequest(c *gin.Context) (*models.ExtractRequest, bool) {
	var req models.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, models.ExtractResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: err.Error(),
			},
		})
		return nil, false
	}
	req.Defaults()
	return &req, true
}

// respondError maps an error to its HTTP status and writes a structured
// JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	var extractErr *models.ExtractError
	if !errors.As(err, &extractErr) {
		extractErr = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(extractErr), models.ExtractResponse{
		Success: false,
		Error:   extractErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ExtractError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNoLinks:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}
