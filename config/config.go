package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Fetch     FetchConfig
	Export    ExportConfig
	Selectors SelectorConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Webhook   WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// MaxBodyBytes caps inline HTML uploads.
	MaxBodyBytes int64 // default: 20 MiB
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Enabled launches Chrome for the rod fetch engines. The watch command
	// always launches one.
	Enabled bool // default: true

	// Headless controls whether the browser runs headless.
	// The watch command forces headful.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent headless fetches).
	MaxPages int // default: 4

	// Proxy is the proxy URL for browser traffic.
	Proxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// WaitSelector is awaited after load on headless fetches, since SIAN
	// may render the result list from script. Empty disables the wait.
	WaitSelector string // default: "a.help_pesquisa[onclick]"

	// WaitSelectorTimeout bounds the WaitSelector wait. Pages without
	// results never match, so keep it short.
	WaitSelectorTimeout time.Duration // default: 5s

	// BlockedResourceTypes lists resource types to block on headless fetches.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// FetchConfig controls how a result page is retrieved from a URL.
type FetchConfig struct {
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s

	// NavigationTimeout is the max time for page.Navigate alone.
	NavigationTimeout time.Duration // default: 15s

	// EscalationOrder lists engine names in the order they are tried.
	EscalationOrder []string // default: ["http", "rod", "rod-stealth"]

	// DomainMemoryTTL is how long the winning engine is remembered per host.
	DomainMemoryTTL time.Duration // default: 24h
}

// ExportConfig controls where exported files land.
type ExportConfig struct {
	// Dir is the directory exports are written to.
	Dir string // default: "."

	// PathsFilename is the file name for ModePaths exports.
	PathsFilename string // default: "pdf_paths.txt"

	// LinksFilename is the file name for ModeLinks exports.
	LinksFilename string // default: "pdf_links.json"
}

// SelectorConfig overrides the SIAN markup conventions. Empty fields keep
// the built-in values.
type SelectorConfig struct {
	MarkerClass        string // default: "help_pesquisa"
	ContainerSelector  string // default: "li"
	TitleSelector      string // default: "span.titulo_conteudo > a"
	PDFHandlerMarker   string // default: "fjs_Link_download"
	TitleHandlerMarker string // default: "mudapagina_link"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the extraction result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500

	// TTL is the hard expiry for cached entries regardless of max_age.
	TTL time.Duration // default: 1h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// WebhookConfig controls the optional export notification.
type WebhookConfig struct {
	// URL receives an export.completed event after each file export.
	// Empty disables delivery.
	URL string

	// Secret signs the payload with HMAC-SHA256 when set.
	Secret string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         envOr("SIANPDF_HOST", "0.0.0.0"),
			Port:         envIntOr("SIANPDF_PORT", 8080),
			Mode:         envOr("SIANPDF_MODE", "release"),
			MaxBodyBytes: int64(envIntOr("SIANPDF_MAX_BODY_BYTES", 20<<20)),
		},
		Browser: BrowserConfig{
			Enabled:    envBoolOr("SIANPDF_BROWSER", true),
			Headless:   envBoolOr("SIANPDF_HEADLESS", true),
			MaxPages:   envIntOr("SIANPDF_MAX_PAGES", 4),
			Proxy:      os.Getenv("SIANPDF_PROXY"),
			NoSandbox:  envBoolOr("SIANPDF_NO_SANDBOX", false),
			BrowserBin: os.Getenv("SIANPDF_BROWSER_BIN"),

			WaitSelector:        envOr("SIANPDF_WAIT_SELECTOR", "a.help_pesquisa[onclick]"),
			WaitSelectorTimeout: envDurationOr("SIANPDF_WAIT_SELECTOR_TIMEOUT", 5*time.Second),
			BlockedResourceTypes: envSliceOr("SIANPDF_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Fetch: FetchConfig{
			DefaultTimeout:    envDurationOr("SIANPDF_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:        envDurationOr("SIANPDF_MAX_TIMEOUT", 120*time.Second),
			NavigationTimeout: envDurationOr("SIANPDF_NAV_TIMEOUT", 15*time.Second),
			EscalationOrder:   envSliceOr("SIANPDF_ENGINES", []string{"http", "rod", "rod-stealth"}),
			DomainMemoryTTL:   envDurationOr("SIANPDF_DOMAIN_MEMORY_TTL", 24*time.Hour),
		},
		Export: ExportConfig{
			Dir:           envOr("SIANPDF_EXPORT_DIR", "."),
			PathsFilename: envOr("SIANPDF_PATHS_FILENAME", "pdf_paths.txt"),
			LinksFilename: envOr("SIANPDF_LINKS_FILENAME", "pdf_links.json"),
		},
		Selectors: SelectorConfig{
			MarkerClass:        os.Getenv("SIANPDF_MARKER_CLASS"),
			ContainerSelector:  os.Getenv("SIANPDF_CONTAINER_SELECTOR"),
			TitleSelector:      os.Getenv("SIANPDF_TITLE_SELECTOR"),
			PDFHandlerMarker:   os.Getenv("SIANPDF_PDF_HANDLER"),
			TitleHandlerMarker: os.Getenv("SIANPDF_TITLE_HANDLER"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SIANPDF_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SIANPDF_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SIANPDF_RATE_RPS", 5.0),
			Burst:             envIntOr("SIANPDF_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SIANPDF_CACHE_MAX_ENTRIES", 500),
			TTL:        envDurationOr("SIANPDF_CACHE_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("SIANPDF_LOG_LEVEL", "info"),
			Format: envOr("SIANPDF_LOG_FORMAT", "json"),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("SIANPDF_WEBHOOK_URL"),
			Secret: os.Getenv("SIANPDF_WEBHOOK_SECRET"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
