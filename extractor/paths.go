package extractor

import (
	"github.com/PuerkitoBio/goquery"
)

// ExtractPaths returns the captured path of every marked anchor whose
// handler matches, in document order. Repeated paths are kept.
func (e *Extractor) ExtractPaths(doc *goquery.Document) []string {
	paths := []string{}
	doc.FindMatcher(e.markedAnchors).Each(func(_ int, a *goquery.Selection) {
		onclick, _ := a.Attr("onclick")
		if p, ok := capture(e.handler, onclick); ok {
			paths = append(paths, p)
		}
	})
	return paths
}
