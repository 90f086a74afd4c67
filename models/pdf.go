package models

import (
	"fmt"
	"strings"
)

// PdfReference is one exported PDF link. Link is the relative path captured
// from the anchor's click handler; Title is only set in ModeLinks.
type PdfReference struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Mode selects which extraction variant runs.
type Mode string

const (
	// ModePaths collects every matching path from marked anchors, without
	// deduplication, and exports them as plain text.
	ModePaths Mode = "paths"

	// ModeLinks walks list-item containers, pairs each PDF with the
	// container title and drops repeated (title, path) pairs. Exported as JSON.
	ModeLinks Mode = "links"
)

// ParseMode maps a user-supplied mode name to a Mode. The empty string
// selects ModeLinks.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paths", "simple", "text", "txt":
		return ModePaths, nil
	case "links", "titled", "json", "":
		return ModeLinks, nil
	default:
		return "", NewExtractError(ErrCodeInvalidInput,
			fmt.Sprintf("unknown mode %q (want paths or links)", s), nil)
	}
}

func (m Mode) String() string { return string(m) }
