// Package trigger injects an export button into a live browser tab and
// runs extraction and export when it is clicked.
package trigger

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/use-agent/sianpdf/exporter"
	"github.com/use-agent/sianpdf/extractor"
	"github.com/use-agent/sianpdf/models"
)

//go:embed button.js
var buttonJS string

// State is the button's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateExporting
)

func (s State) String() string {
	if s == StateExporting {
		return "exporting"
	}
	return "idle"
}

// ErrBusy is returned by Press while a previous press is still exporting.
var ErrBusy = errors.New("trigger: export already in progress")

// Notice is the user-facing outcome of one press. An empty Message means
// nothing needs to be shown.
type Notice struct {
	Message string
	Count   int
	Path    string
}

// Export describes a completed file export.
type Export struct {
	Mode      models.Mode `json:"mode"`
	Path      string      `json:"path"`
	Count     int         `json:"count"`
	SourceURL string      `json:"source_url,omitempty"`
}

// ExportHook runs after a successful export.
type ExportHook func(ctx context.Context, e Export)

// Button is the in-page export control. One Button serves one page at a
// time: Attach binds it, Detach releases it.
type Button struct {
	ext          *extractor.Extractor
	exp          *exporter.Exporter
	mode         models.Mode
	filename     string
	alwaysNotify bool
	hook         ExportHook
	logger       *slog.Logger

	state atomic.Int32

	mu       sync.Mutex
	page     *rod.Page
	detachFn func() error
}

// Option configures a Button.
type Option func(*Button)

// WithMode selects the extraction variant. Default: models.ModePaths.
func WithMode(m models.Mode) Option { return func(b *Button) { b.mode = m } }

// WithFilename overrides the export file name.
func WithFilename(name string) Option { return func(b *Button) { b.filename = name } }

// WithAlwaysNotify reports successful exports in links mode too, which is
// otherwise silent.
func WithAlwaysNotify() Option { return func(b *Button) { b.alwaysNotify = true } }

// WithExportHook registers a callback for completed exports.
func WithExportHook(h ExportHook) Option { return func(b *Button) { b.hook = h } }

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(b *Button) { b.logger = l } }

// New creates a detached Button.
func New(ext *extractor.Extractor, exp *exporter.Exporter, opts ...Option) *Button {
	b := &Button{
		ext:    ext,
		exp:    exp,
		mode:   models.ModePaths,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	if b.filename == "" {
		b.filename = exporter.DefaultFilename(b.mode)
	}
	return b
}

// State reports whether an export is running.
func (b *Button) State() State { return State(b.state.Load()) }

// Mode returns the extraction variant the button runs.
func (b *Button) Mode() models.Mode { return b.mode }

// Press extracts from rawHTML and exports the result. It is what a click
// on the attached button runs. An empty result produces a "none found"
// notice and no file.
func (b *Button) Press(ctx context.Context, rawHTML, sourceURL string) (Notice, error) {
	if !b.state.CompareAndSwap(int32(StateIdle), int32(StateExporting)) {
		return Notice{Message: "An export is already running."}, ErrBusy
	}
	defer b.state.Store(int32(StateIdle))

	res, err := b.ext.ExtractString(rawHTML, b.mode)
	if err != nil {
		return Notice{Message: "Export failed: " + errorMessage(err)}, err
	}

	if res.Empty() {
		b.logger.Info("trigger: nothing to export", "mode", b.mode, "url", sourceURL)
		return Notice{Message: NoneFoundMessage(b.mode)}, nil
	}

	path, err := b.exp.Export(ctx, b.filename, exporter.PayloadFor(res))
	if err != nil {
		return Notice{Message: "Export failed: " + errorMessage(err)}, err
	}

	n := Notice{Count: res.Len(), Path: path}
	switch {
	case b.mode == models.ModePaths:
		n.Message = fmt.Sprintf("Saved %d PDF path(s) to %s", n.Count, b.filename)
	case b.alwaysNotify:
		n.Message = fmt.Sprintf("Saved %d PDF link(s) to %s", n.Count, b.filename)
	}

	if b.hook != nil {
		b.hook(ctx, Export{Mode: b.mode, Path: path, Count: n.Count, SourceURL: sourceURL})
	}
	return n, nil
}

// NoneFoundMessage is the notice for an empty result in mode.
func NoneFoundMessage(mode models.Mode) string {
	if mode == models.ModePaths {
		return "No PDF paths found on this page."
	}
	return "No PDF links found."
}

// errorMessage prefers the short message of an ExtractError.
func errorMessage(err error) string {
	var xe *models.ExtractError
	if errors.As(err, &xe) {
		return xe.Message
	}
	return err.Error()
}

// buttonConfig is passed to button.js.
type buttonConfig struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Color   string `json:"color"`
	Binding string `json:"binding"`
}

func (b *Button) config() buttonConfig {
	if b.mode == models.ModePaths {
		return buttonConfig{ID: "sianpdf-export-paths", Label: "Save PDF Paths", Color: "#28a745", Binding: "__sianpdfExportPaths"}
	}
	return buttonConfig{ID: "sianpdf-export-links", Label: "SAVE PDF LINKS", Color: "#343a40", Binding: "__sianpdfExportLinks"}
}

// script returns button.js applied to cfg, ready for EvalOnNewDocument.
func script(cfg buttonConfig) (string, error) {
	arg, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return "(" + strings.TrimSpace(buttonJS) + ")(" + string(arg) + ");", nil
}
