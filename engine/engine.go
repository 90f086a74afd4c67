// Package engine retrieves the single page whose PDF references are to be
// extracted, escalating from plain HTTP to a real browser when needed.
package engine

import (
	"context"
	"time"
)

// Engine fetches one page.
type Engine interface {
	// Name returns the engine identifier ("http", "rod", "rod-stealth").
	Name() string

	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Stealth bool
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}
