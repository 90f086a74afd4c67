package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8080 || cfg.Server.Mode != "release" {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if !cfg.Browser.Enabled || !cfg.Browser.Headless || cfg.Browser.MaxPages != 4 {
		t.Errorf("unexpected browser defaults: %+v", cfg.Browser)
	}
	if want := []string{"http", "rod", "rod-stealth"}; !reflect.DeepEqual(cfg.Fetch.EscalationOrder, want) {
		t.Errorf("EscalationOrder = %v, want %v", cfg.Fetch.EscalationOrder, want)
	}
	if cfg.Export.PathsFilename != "pdf_paths.txt" || cfg.Export.LinksFilename != "pdf_links.json" {
		t.Errorf("unexpected export defaults: %+v", cfg.Export)
	}
	if cfg.Selectors != (SelectorConfig{}) {
		t.Errorf("selectors should default to empty overrides, got %+v", cfg.Selectors)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SIANPDF_PORT", "9090")
	t.Setenv("SIANPDF_HEADLESS", "false")
	t.Setenv("SIANPDF_ENGINES", "http, rod")
	t.Setenv("SIANPDF_NAV_TIMEOUT", "5s")
	t.Setenv("SIANPDF_RATE_RPS", "2.5")
	t.Setenv("SIANPDF_MARKER_CLASS", "baixar")
	t.Setenv("SIANPDF_API_KEYS", "a,b")

	cfg := Load()
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Browser.Headless {
		t.Error("Headless should be false")
	}
	if want := []string{"http", "rod"}; !reflect.DeepEqual(cfg.Fetch.EscalationOrder, want) {
		t.Errorf("EscalationOrder = %v, want %v", cfg.Fetch.EscalationOrder, want)
	}
	if cfg.Fetch.NavigationTimeout != 5*time.Second {
		t.Errorf("NavigationTimeout = %v", cfg.Fetch.NavigationTimeout)
	}
	if cfg.RateLimit.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.Selectors.MarkerClass != "baixar" {
		t.Errorf("MarkerClass = %q", cfg.Selectors.MarkerClass)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(cfg.Auth.APIKeys, want) {
		t.Errorf("APIKeys = %v", cfg.Auth.APIKeys)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SIANPDF_PORT", "not-a-number")
	t.Setenv("SIANPDF_CACHE_TTL", "forever")

	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want fallback 8080", cfg.Server.Port)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want fallback 1h", cfg.Cache.TTL)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Errorf("unexpected record: %v", rec)
	}

	text := NewLogger(LogConfig{Level: "debug", Format: "text"}, &buf)
	if !text.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}
