package extractor

import (
	"fmt"
	"regexp"
)

// handlerPattern builds the capture used on onclick values: the first
// single-quoted argument of fn, provided it ends in ".pdf".
func handlerPattern(fn string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(regexp.QuoteMeta(fn) + `\('([^']+\.pdf)'`)
	if err != nil {
		return nil, fmt.Errorf("extractor: compile handler pattern for %q: %w", fn, err)
	}
	return re, nil
}

var defaultHandler = regexp.MustCompile(`fjs_Link_download\('([^']+\.pdf)'`)

// CapturePDFPath returns the path passed to fjs_Link_download in an inline
// handler, e.g. "/docs/x.pdf" for "fjs_Link_download('/docs/x.pdf')".
// The handler text is matched, never executed. ok is false when no
// quoted .pdf argument is present.
func CapturePDFPath(handler string) (path string, ok bool) {
	return capture(defaultHandler, handler)
}

func capture(re *regexp.Regexp, handler string) (string, bool) {
	m := re.FindStringSubmatch(handler)
	if m == nil {
		return "", false
	}
	return m[1], true
}
