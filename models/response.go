package models

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	// Success indicates whether extraction completed without errors.
	// An empty result is still a success.
	Success bool `json:"success"`

	// Mode is the extraction variant that ran.
	Mode Mode `json:"mode,omitempty"`

	// Count is the number of exported entries.
	Count int `json:"count"`

	// Items is filled in ModeLinks.
	Items []PdfReference `json:"items,omitempty"`

	// Paths is filled in ModePaths. Repeats are kept.
	Paths []string `json:"paths,omitempty"`

	// SourceURL is the fetched page, empty for inline HTML.
	SourceURL string `json:"source_url,omitempty"`

	// EngineUsed indicates which fetch engine produced the document
	// (e.g. "http", "rod", "rod-stealth").
	EngineUsed string `json:"engine_used,omitempty"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	TotalMs      int64 `json:"total_ms"`
	FetchMs      int64 `json:"fetch_ms"`
	ExtractionMs int64 `json:"extraction_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Browser bool   `json:"browser"`
	Version string `json:"version"`
}
