package extractor

import "github.com/use-agent/sianpdf/models"

// Result is the ordered output of one extraction. Exactly one of Paths or
// Items is populated, according to Mode.
type Result struct {
	Mode  models.Mode
	Paths []string
	Items []models.PdfReference
}

// Len returns the number of exported entries.
func (r Result) Len() int {
	if r.Mode == models.ModePaths {
		return len(r.Paths)
	}
	return len(r.Items)
}

// Empty reports whether nothing was found. An empty result is a normal
// outcome, not an error.
func (r Result) Empty() bool { return r.Len() == 0 }

// References returns the result as PdfReference values. In ModePaths the
// titles are left empty.
func (r Result) References() []models.PdfReference {
	if r.Mode != models.ModePaths {
		return r.Items
	}
	refs := make([]models.PdfReference, len(r.Paths))
	for i, p := range r.Paths {
		refs[i] = models.PdfReference{Link: p}
	}
	return refs
}
