// Package browser owns the Chrome process used to render SIAN pages, both
// for headless fetches and for the interactive watch session.
package browser

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/sianpdf/config"
	"github.com/use-agent/sianpdf/models"
)

// Browser manages the browser lifecycle and the headless page pool.
// It is safe for concurrent use.
type Browser struct {
	browser     *rod.Browser
	pagePool    rod.Pool[rod.Page]
	cfg         config.BrowserConfig
	fetchCfg    config.FetchConfig
	maxPages    int
	activePages atomic.Int32
}

// Launch starts Chrome and connects to it.
func Launch(cfg config.BrowserConfig, fetchCfg config.FetchConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.Proxy != "" {
		l = l.Proxy(cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL, "headless", cfg.Headless)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	return &Browser{
		browser:  b,
		pagePool: rod.NewPagePool(maxPages),
		cfg:      cfg,
		fetchCfg: fetchCfg,
		maxPages: maxPages,
	}, nil
}

// ActivePages returns the number of headless fetches in flight.
func (b *Browser) ActivePages() int { return int(b.activePages.Load()) }

// MaxPages returns the page pool capacity.
func (b *Browser) MaxPages() int { return b.maxPages }

// Open creates a new tab on url for interactive use. The tab outlives ctx
// for navigation purposes; only the initial load is bound to it.
func (b *Browser) Open(ctx context.Context, url string, useStealth bool) (*rod.Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeBrowserCrash, "failed to open tab", err)
	}

	if useStealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, b.fetchCfg.NavigationTimeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(url); err != nil {
		_ = page.Close()
		return nil, categorizeError(err, "navigation to target URL failed")
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		slog.Debug("page load did not finish in time, continuing", "url", url, "error", err)
	}
	return page, nil
}

// Close drains the page pool and kills the browser process.
func (b *Browser) Close() {
	slog.Info("browser shutting down: draining page pool")
	b.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	if err := b.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	slog.Info("browser shutdown complete")
}
