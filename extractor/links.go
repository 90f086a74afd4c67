package extractor

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/sianpdf/models"
)

// pairKey identifies one (raw title, path) pair.
type pairKey struct {
	title string
	path  string
}

// ExtractItems walks the containers in document order and pairs each PDF
// anchor with the container's title. A container without a title anchor or
// without PDF anchors contributes nothing.
//
// A (title, path) pair is emitted once. The n-th distinct path seen under
// the same raw title is titled "<title> - n" for n > 1, whichever container
// it came from.
func (e *Extractor) ExtractItems(doc *goquery.Document) []models.PdfReference {
	items := []models.PdfReference{}
	seen := make(map[pairKey]struct{})
	titleCount := make(map[string]int)

	doc.FindMatcher(e.containers).Each(func(_ int, li *goquery.Selection) {
		titleAnchor := li.FindMatcher(e.titleAnchor).First()
		pdfAnchors := li.FindMatcher(e.pdfAnchors)
		if titleAnchor.Length() == 0 || pdfAnchors.Length() == 0 {
			return
		}

		rawTitle := trimText(titleAnchor.Text())

		pdfAnchors.Each(func(_ int, a *goquery.Selection) {
			onclick, _ := a.Attr("onclick")
			link, ok := capture(e.handler, onclick)
			if !ok {
				return
			}

			key := pairKey{title: rawTitle, path: link}
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}

			titleCount[rawTitle]++
			items = append(items, models.PdfReference{
				Title: suffixTitle(rawTitle, titleCount[rawTitle]),
				Link:  link,
			})
		})
	})

	return items
}

// suffixTitle returns title for the first occurrence and "title - n" after.
func suffixTitle(title string, n int) string {
	if n <= 1 {
		return title
	}
	return title + " - " + strconv.Itoa(n)
}

// trimText trims the whitespace set browsers strip in String.prototype.trim,
// which includes the BOM in addition to Unicode spaces.
func trimText(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
