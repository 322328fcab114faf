package api

import "github.com/girpas-ulg/spector/internal/spectra"

// FormatInfo describes one supported legacy format.
type FormatInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

// SpectrumResponse wraps one decoded spectrum. Spectrum holds the
// format-specific struct (fts1/bruker/rinsland) rendered with the
// historical field names.
type SpectrumResponse struct {
	RequestID string          `json:"request_id"`
	Path      string          `json:"path"`
	Format    string          `json:"format"`
	Summary   spectra.Summary `json:"summary"`
	Spectrum  any             `json:"spectrum"`
}

// CatalogResponse wraps one decoded spectra description file.
type CatalogResponse struct {
	RequestID string `json:"request_id"`
	Path      string `json:"path"`
	Catalog   any    `json:"catalog"`
}

// ErrorBody is the error payload of every non-2xx response.
type ErrorBody struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}
