package spectra

import "time"

// Summary is the format-independent view of a single spectrum, used by
// the CLI listings and the HTTP API. Field names follow the historical
// header vocabulary.
type Summary struct {
	Format          string    `json:"format"`
	Name            string    `json:"name"`
	DatetimeAvg     time.Time `json:"datetime_avg"`
	WavenumberBegin float64   `json:"wavenumber_begin"`
	WavenumberEnd   float64   `json:"wavenumber_end"`
	WavenumberStep  float64   `json:"wavenumber_step"`
	Resolution      float64   `json:"resolution"`
	NPoints         int       `json:"n_points"`
	Samples         int       `json:"samples"`
}
