// Command sianpdf-watch opens SIAN in a visible browser window and adds an
// export button to every page. Clicking the button saves the PDF references
// of the page on screen.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/use-agent/sianpdf/browser"
	"github.com/use-agent/sianpdf/config"
	"github.com/use-agent/sianpdf/exporter"
	"github.com/use-agent/sianpdf/extractor"
	"github.com/use-agent/sianpdf/models"
	"github.com/use-agent/sianpdf/trigger"
	"github.com/use-agent/sianpdf/webhook"
)

// CLI flags
var (
	startURL   = flag.String("url", "https://sian.an.gov.br/", "page to open")
	mode       = flag.String("mode", "links", "button variant: paths or links")
	outDir     = flag.String("out", "", "export directory (default: $SIANPDF_EXPORT_DIR or .)")
	headless   = flag.Bool("headless", false, "run the browser without a window")
	useStealth = flag.Bool("stealth", false, "inject stealth scripts")
	notify     = flag.Bool("notify", false, "alert after successful exports in links mode too")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	config.InitLogger(cfg.Log, os.Stderr)

	m, err := models.ParseMode(*mode)
	if err != nil {
		slog.Error("invalid mode", "error", err)
		os.Exit(1)
	}
	ext, err := extractor.FromConfig(cfg.Selectors)
	if err != nil {
		slog.Error("invalid selector configuration", "error", err)
		os.Exit(1)
	}

	dir := cfg.Export.Dir
	if *outDir != "" {
		dir = *outDir
	}
	name := cfg.Export.PathsFilename
	if m == models.ModeLinks {
		name = cfg.Export.LinksFilename
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bcfg := cfg.Browser
	bcfg.Headless = *headless
	b, err := browser.Launch(bcfg, cfg.Fetch)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	page, err := b.Open(ctx, *startURL, *useStealth)
	if err != nil {
		slog.Error("failed to open page", "url", *startURL, "error", err)
		return
	}

	hooks := webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret)
	defer hooks.Wait()

	opts := []trigger.Option{
		trigger.WithMode(m),
		trigger.WithFilename(name),
		trigger.WithExportHook(func(_ context.Context, e trigger.Export) {
			hooks.DeliverAsync(webhook.NewEvent(webhook.EventExportCompleted, e))
		}),
	}
	if *notify {
		opts = append(opts, trigger.WithAlwaysNotify())
	}
	btn := trigger.New(ext, exporter.New(dir), opts...)

	// The binding must outlive the signal so Detach can still reach the page.
	if err := btn.Attach(context.WithoutCancel(ctx), page); err != nil {
		slog.Error("failed to attach export button", "error", err)
		return
	}
	defer func() {
		if err := btn.Detach(); err != nil {
			slog.Warn("detach failed", "error", err)
		}
	}()

	slog.Info("watching", "url", *startURL, "mode", m, "dir", dir)
	<-ctx.Done()
	slog.Info("shutdown signal received")
}
