package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
)

// AcceptFunc decides whether a fetched page is good enough to stop
// escalating. SIAN builds some result lists client-side, so a plain HTTP
// response can succeed and still carry none of the download handlers.
type AcceptFunc func(*FetchResult) bool

// ErrNoEngines is returned by Dispatch when the dispatcher is empty.
var ErrNoEngines = errors.New("dispatcher: no engines configured")

// Dispatcher tries engines one at a time in escalation order, starting with
// the engine that last won for the request's domain.
type Dispatcher struct {
	engines []Engine
	memory  *DomainMemory
	accept  AcceptFunc
}

// NewDispatcher creates a Dispatcher. engines are tried in slice order.
// A nil accept treats every successful fetch as final.
func NewDispatcher(engines []Engine, memory *DomainMemory, accept AcceptFunc) *Dispatcher {
	return &Dispatcher{
		engines: engines,
		memory:  memory,
		accept:  accept,
	}
}

// Engines returns the configured engine names in escalation order.
func (d *Dispatcher) Engines() []string {
	names := make([]string, len(d.engines))
	for i, e := range d.engines {
		names[i] = e.Name()
	}
	return names
}

// Dispatch fetches req.URL. The first accepted result wins and is
// remembered for the domain. When every engine fetched the page but none
// was accepted, the last fetched result is returned; when every engine
// failed, the last error is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, ErrNoEngines
	}

	domain := extractDomain(req.URL)

	var (
		fallback *FetchResult
		lastErr  error
	)
	for _, eng := range d.order(domain) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slog.Debug("engine starting", "engine", eng.Name(), "url", req.URL)
		result, err := eng.Fetch(ctx, req)
		if err != nil {
			slog.Debug("engine failed", "engine", eng.Name(), "url", req.URL, "error", err)
			if d.memory != nil && d.memory.Get(domain) == eng.Name() {
				d.memory.Delete(domain)
			}
			lastErr = err
			continue
		}

		if d.accept != nil && !d.accept(result) {
			slog.Debug("engine result rejected, escalating", "engine", eng.Name(), "url", req.URL)
			fallback = result
			continue
		}

		slog.Info("engine succeeded", "engine", result.EngineName, "url", req.URL)
		if d.memory != nil {
			d.memory.Set(domain, result.EngineName)
		}
		return result, nil
	}

	if fallback != nil {
		return fallback, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("dispatcher: all engines failed for %s", req.URL)
	}
	return nil, lastErr
}

// order returns the engines with the remembered winner for domain moved to
// the front.
func (d *Dispatcher) order(domain string) []Engine {
	if d.memory == nil {
		return d.engines
	}
	remembered := d.memory.Get(domain)
	if remembered == "" {
		return d.engines
	}

	ordered := make([]Engine, 0, len(d.engines))
	for _, eng := range d.engines {
		if eng.Name() == remembered {
			slog.Debug("domain memory hit", "domain", domain, "engine", remembered)
			ordered = append(ordered, eng)
		}
	}
	for _, eng := range d.engines {
		if eng.Name() != remembered {
			ordered = append(ordered, eng)
		}
	}
	return ordered
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
