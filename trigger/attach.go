package trigger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

// Attach binds the button to page. The button is injected into the
// current document and into every document the page loads afterwards.
// Clicks are handled until Detach is called or ctx is done.
func (b *Button) Attach(ctx context.Context, page *rod.Page) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page != nil {
		return errors.New("trigger: button already attached")
	}

	cfg := b.config()
	code, err := script(cfg)
	if err != nil {
		return fmt.Errorf("trigger: build script: %w", err)
	}

	p := page.Context(ctx)

	stopExpose, err := p.Expose(cfg.Binding, func(req gson.JSON) (interface{}, error) {
		return b.handleClick(ctx, req), nil
	})
	if err != nil {
		return fmt.Errorf("trigger: expose binding: %w", err)
	}

	removeScript, err := p.EvalOnNewDocument(code)
	if err != nil {
		_ = stopExpose()
		return fmt.Errorf("trigger: register script: %w", err)
	}

	// The page may already be loaded; inject into it directly as well.
	// button.js is idempotent per document.
	if _, err := p.Eval(strings.TrimSpace(buttonJS), cfg); err != nil {
		b.logger.Warn("trigger: inject into current document failed, waiting for next load", "error", err)
	}

	b.page = page
	b.detachFn = func() error {
		return errors.Join(removeScript(), stopExpose())
	}
	b.logger.Info("trigger: button attached", "mode", b.mode, "label", cfg.Label)
	return nil
}

// Detach unbinds the button. Buttons already rendered stay visible but
// stop responding. Detach on a detached Button is a no-op.
func (b *Button) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil
	}
	err := b.detachFn()
	b.page, b.detachFn = nil, nil
	if err != nil {
		return fmt.Errorf("trigger: detach: %w", err)
	}
	return nil
}

// handleClick runs one press for the page binding and returns the text
// the page should alert, or "" for none.
func (b *Button) handleClick(ctx context.Context, req gson.JSON) string {
	html := req.Get("html").Str()
	url := req.Get("url").Str()

	notice, err := b.Press(ctx, html, url)
	if err != nil {
		b.logger.Warn("trigger: press failed", "url", url, "error", err)
	} else if notice.Path != "" {
		b.logger.Info("trigger: exported", "url", url, "path", notice.Path, "entries", notice.Count)
	}
	return notice.Message
}
