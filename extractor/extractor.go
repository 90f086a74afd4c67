// Package extractor finds PDF download references in SIAN result pages.
//
// SIAN renders each downloadable file as an anchor whose inline onclick
// handler calls fjs_Link_download('<path>.pdf'). Two extraction variants
// are provided:
//
//	ModePaths: every marked anchor, in document order, repeats kept.
//	ModeLinks: per list-item container, title + path pairs with repeats
//	           dropped and repeated titles suffixed " - N".
package extractor

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/sianpdf/config"
	"github.com/use-agent/sianpdf/models"
)

// Selectors describes the markup conventions of the target site. Empty
// fields fall back to DefaultSelectors.
type Selectors struct {
	// MarkerClass is the CSS class carried by PDF anchors.
	MarkerClass string

	// ContainerSelector matches one search hit in ModeLinks.
	ContainerSelector string

	// TitleSelector matches the title anchor inside a container, before the
	// handler marker filter is applied.
	TitleSelector string

	// PDFHandlerMarker is the function name called by PDF anchors.
	PDFHandlerMarker string

	// TitleHandlerMarker is a substring of the title anchor's handler.
	TitleHandlerMarker string
}

// DefaultSelectors matches sian.an.gov.br search results.
var DefaultSelectors = Selectors{
	MarkerClass:        "help_pesquisa",
	ContainerSelector:  "li",
	TitleSelector:      "span.titulo_conteudo > a",
	PDFHandlerMarker:   "fjs_Link_download",
	TitleHandlerMarker: "mudapagina_link",
}

func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors
	if s.MarkerClass != "" {
		d.MarkerClass = s.MarkerClass
	}
	if s.ContainerSelector != "" {
		d.ContainerSelector = s.ContainerSelector
	}
	if s.TitleSelector != "" {
		d.TitleSelector = s.TitleSelector
	}
	if s.PDFHandlerMarker != "" {
		d.PDFHandlerMarker = s.PDFHandlerMarker
	}
	if s.TitleHandlerMarker != "" {
		d.TitleHandlerMarker = s.TitleHandlerMarker
	}
	return d
}

// Extractor holds the compiled selectors and handler pattern.
// It keeps no per-call state and is safe for concurrent use.
type Extractor struct {
	sel Selectors

	markedAnchors cascadia.Selector // ModePaths anchors
	containers    cascadia.Selector
	titleAnchor   cascadia.Selector
	pdfAnchors    cascadia.Selector
	handler       *regexp.Regexp
}

// New compiles an Extractor for the given selectors.
func New(s Selectors) (*Extractor, error) {
	s = s.withDefaults()
	if strings.ContainsAny(s.PDFHandlerMarker+s.TitleHandlerMarker, `"\`) {
		return nil, models.NewExtractError(models.ErrCodeInvalidInput,
			"handler markers must not contain quotes or backslashes", nil)
	}

	e := &Extractor{sel: s}
	var err error
	compile := func(dst *cascadia.Selector, expr string) {
		if err != nil {
			return
		}
		var c cascadia.Selector
		if c, err = cascadia.Compile(expr); err != nil {
			err = models.NewExtractError(models.ErrCodeInvalidInput,
				fmt.Sprintf("invalid selector %q", expr), err)
			return
		}
		*dst = c
	}

	compile(&e.markedAnchors, fmt.Sprintf("a.%s[onclick]", s.MarkerClass))
	compile(&e.containers, s.ContainerSelector)
	compile(&e.titleAnchor, fmt.Sprintf(`%s[onclick*="%s"]`, s.TitleSelector, s.TitleHandlerMarker))
	compile(&e.pdfAnchors, fmt.Sprintf(`a.%s[onclick*="%s"]`, s.MarkerClass, s.PDFHandlerMarker))
	if err != nil {
		return nil, err
	}

	re, err := handlerPattern(s.PDFHandlerMarker)
	if err != nil {
		return nil, models.NewExtractError(models.ErrCodeInvalidInput, "invalid handler marker", err)
	}
	e.handler = re
	return e, nil
}

// Default returns an Extractor for the SIAN markup.
func Default() *Extractor {
	e, err := New(DefaultSelectors)
	if err != nil {
		panic(err)
	}
	return e
}

// FromConfig builds an Extractor from environment overrides.
func FromConfig(cfg config.SelectorConfig) (*Extractor, error) {
	return New(Selectors{
		MarkerClass:        cfg.MarkerClass,
		ContainerSelector:  cfg.ContainerSelector,
		TitleSelector:      cfg.TitleSelector,
		PDFHandlerMarker:   cfg.PDFHandlerMarker,
		TitleHandlerMarker: cfg.TitleHandlerMarker,
	})
}

// Mentions reports whether rawHTML contains a call to the PDF handler at
// all. It is a cheap pre-check that does not parse the document.
func (e *Extractor) Mentions(rawHTML string) bool {
	return strings.Contains(rawHTML, e.sel.PDFHandlerMarker+"(")
}

// Selectors returns the effective selectors.
func (e *Extractor) Selectors() Selectors { return e.sel }

// Extract runs the variant selected by mode against doc.
func (e *Extractor) Extract(doc *goquery.Document, mode models.Mode) Result {
	if mode == models.ModePaths {
		return Result{Mode: mode, Paths: e.ExtractPaths(doc)}
	}
	return Result{Mode: models.ModeLinks, Items: e.ExtractItems(doc)}
}

// ExtractHTML parses r as HTML and extracts from it.
func (e *Extractor) ExtractHTML(r io.Reader, mode models.Mode) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{Mode: mode}, models.NewExtractError(models.ErrCodeInvalidInput, "failed to parse HTML", err)
	}
	return e.Extract(doc, mode), nil
}

// ExtractString is ExtractHTML for an in-memory document.
func (e *Extractor) ExtractString(rawHTML string, mode models.Mode) (Result, error) {
	return e.ExtractHTML(strings.NewReader(rawHTML), mode)
}
