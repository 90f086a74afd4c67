package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/sianpdf/api"
	"github.com/use-agent/sianpdf/api/handler"
	"github.com/use-agent/sianpdf/browser"
	"github.com/use-agent/sianpdf/cache"
	"github.com/use-agent/sianpdf/config"
	"github.com/use-agent/sianpdf/engine"
	"github.com/use-agent/sianpdf/exporter"
	"github.com/use-agent/sianpdf/extractor"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	config.InitLogger(cfg.Log, os.Stdout)
	slog.Info("sianpdf starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browser", cfg.Browser.Enabled,
		"engines", cfg.Fetch.EscalationOrder,
	)

	// ── 3. Extractor ────────────────────────────────────────────────
	ext, err := extractor.FromConfig(cfg.Selectors)
	if err != nil {
		slog.Error("invalid selector configuration", "error", err)
		os.Exit(1)
	}

	// ── 4. Browser (optional) ───────────────────────────────────────
	var (
		rodFetch engine.RodFetchFunc
		status   handler.BrowserStatus
	)
	if cfg.Browser.Enabled {
		b, err := browser.Launch(cfg.Browser, cfg.Fetch)
		if err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
		defer b.Close()
		rodFetch = b.Fetch
		status = b
	}

	// ── 5. Engines and dispatcher ───────────────────────────────────
	engines, err := engine.Build(cfg.Fetch.EscalationOrder, rodFetch)
	if err != nil {
		slog.Error("invalid engine configuration", "error", err)
		os.Exit(1)
	}
	memory := engine.NewDomainMemory(cfg.Fetch.DomainMemoryTTL)
	defer memory.Stop()

	deps := &handler.Deps{
		Extractor: ext,
		Exporter:  exporter.New(cfg.Export.Dir),
		Fetch:     cfg.Fetch,
		Export:    cfg.Export,
	}
	if len(engines) > 0 {
		dispatcher := engine.NewDispatcher(engines, memory, func(r *engine.FetchResult) bool {
			return ext.Mentions(r.HTML)
		})
		deps.Fetcher = dispatcher
		slog.Info("dispatcher ready", "engines", dispatcher.Engines())
	} else {
		slog.Warn("no fetch engines available, url input disabled")
	}

	// ── 6. Cache ────────────────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	defer cc.Stop()
	deps.Cache = cc

	// ── 7. Router and HTTP server ───────────────────────────────────
	router := api.NewRouter(deps, status, cfg, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// Deferred closers drain the page pool and kill Chrome.
	slog.Info("sianpdf stopped")
}
