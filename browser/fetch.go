package browser

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/sianpdf/engine"
	"github.com/use-agent/sianpdf/models"
)

// Page is a rendered document.
type Page struct {
	HTML       string
	Title      string
	FinalURL   string
	StatusCode int // 0 when the browser does not report it
}

// FetchHTML renders url in a pooled headless tab and returns the DOM as
// serialized after scripts ran.
//
// Steps that must precede navigation (stealth, resource blocking) are
// installed first; the tab is reset to about:blank and returned to the
// pool on every path.
func (b *Browser) FetchHTML(ctx context.Context, url string, useStealth bool) (*Page, error) {
	b.activePages.Add(1)
	defer b.activePages.Add(-1)

	page, err := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", err)
	}
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		b.pagePool.Put(page)
	}()

	if useStealth {
		remove, evalErr := page.EvalOnNewDocument(stealth.JS)
		if evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		} else {
			// Pooled tabs are shared between stealth and plain fetches.
			defer func() { _ = remove() }()
		}
	}

	router := setupHijack(page, b.cfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	navCtx, cancel := context.WithTimeout(ctx, b.fetchCfg.NavigationTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(url); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}

	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}

	if sel := b.cfg.WaitSelector; sel != "" && b.cfg.WaitSelectorTimeout > 0 {
		if err := p.Timeout(b.cfg.WaitSelectorTimeout).WaitElementsMoreThan(sel, 0); err != nil {
			slog.Debug("wait selector not found, proceeding with current DOM", "selector", sel, "error", err)
		}
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = url
	}

	// Read from the navigation timing entry; CDP network events would
	// clash with the hijack router's Fetch domain.
	var statusCode int
	if res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch (e) {}
		return 0;
	}`); err == nil {
		statusCode = res.Value.Int()
	}

	return &Page{
		HTML:       rawHTML,
		Title:      evalStringOrEmpty(p, `() => document.title`),
		FinalURL:   finalURL,
		StatusCode: statusCode,
	}, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors.
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// categorizeError wraps raw errors into typed ExtractErrors so the API layer
// can map them to HTTP status codes.
func categorizeError(err error, msg string) *models.ExtractError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewExtractError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewExtractError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewExtractError(models.ErrCodeFetch, msg, err)
	}
}

// Fetch adapts FetchHTML to engine.RodFetchFunc.
func (b *Browser) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	page, err := b.FetchHTML(ctx, req.URL, req.Stealth)
	if err != nil {
		return nil, err
	}
	return &engine.FetchResult{
		HTML:       page.HTML,
		Title:      page.Title,
		StatusCode: page.StatusCode,
		FinalURL:   page.FinalURL,
	}, nil
}
