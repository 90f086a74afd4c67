package models

// ExtractRequest is the payload for POST /api/v1/extract and /api/v1/export.
// Exactly one of URL or HTML must be set.
type ExtractRequest struct {
	// URL is a result page to fetch. Only this page is read; nothing it
	// links to is followed.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// HTML is an already-loaded document, e.g. saved from the browser.
	HTML string `json:"html,omitempty"`

	// Mode is "paths" or "links" (see ParseMode for aliases). Default: "links".
	Mode string `json:"mode,omitempty"`

	// Filename overrides the attachment name on /export.
	Filename string `json:"filename,omitempty"`

	// Timeout is the fetch deadline in seconds when URL is set.
	// Default: 30. Max: 120.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// Stealth forces the stealth browser engine for URL fetches.
	Stealth bool `json:"stealth,omitempty"`

	// MaxAge allows serving a cached result for URL requests that is younger
	// than this many milliseconds. 0 disables the cache.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
	if r.Mode == "" {
		r.Mode = string(ModeLinks)
	}
}

// Validate checks the invariants gin's binding tags cannot express.
func (r *ExtractRequest) Validate() error {
	switch {
	case r.URL == "" && r.HTML == "":
		return NewExtractError(ErrCodeInvalidInput, "one of url or html is required", nil)
	case r.URL != "" && r.HTML != "":
		return NewExtractError(ErrCodeInvalidInput, "url and html are mutually exclusive", nil)
	}
	return nil
}
