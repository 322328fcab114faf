// Package fts1 reads FTIR spectra stored in the FTS1 format, the custom
// binary layout used for measurements taken with the hp1000 instrument.
// The header occupies the first 2048 bytes of the file; sample data
// follows as little-endian float32 values.
package fts1

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/girpas-ulg/spector/internal/binblock"
	"github.com/girpas-ulg/spector/internal/spectra"
)

// headerSize is the full on-disk header width; sample data starts here.
// The layout below maps the known fields within it, the rest is
// undocumented padding.
const headerSize = 2048

var headerLayout = binblock.Layout{
	{Kind: binblock.Pad, Len: 14},
	{Name: "source", Kind: binblock.Bytes, Len: 10},
	{Kind: binblock.Pad, Len: 12},
	{Name: "dayofyear_begin", Kind: binblock.Int16},
	{Name: "year_begin", Kind: binblock.Int16},
	{Name: "dayofyear_end", Kind: binblock.Int16},
	{Name: "year_end", Kind: binblock.Int16},
	{Name: "correction_factor", Kind: binblock.Float32},
	{Kind: binblock.Pad, Len: 222},
	{Name: "aperture", Kind: binblock.Float32},
	{Name: "nb_scan_backward", Kind: binblock.Int16},
	{Kind: binblock.Pad, Len: 2},
	{Name: "ftype", Kind: binblock.Bytes, Len: 12},
	{Kind: binblock.Pad, Len: 308},
	{Name: "n_points", Kind: binblock.Int32},
	{Name: "wavenumber_begin", Kind: binblock.Float64},
	{Name: "wavenumber_end", Kind: binblock.Float64},
	{Name: "opd", Kind: binblock.Float64},
	{Name: "sun_elevation", Kind: binblock.Float32},
	{Kind: binblock.Pad, Len: 10},
	{Name: "sn_ratio", Kind: binblock.Int16},
	{Name: "secz", Kind: binblock.Float32},
	{Name: "hour_avg", Kind: binblock.Float32},
	{Kind: binblock.Pad, Len: 138},
	{Name: "name", Kind: binblock.Bytes, Len: 12},
	{Kind: binblock.Pad, Len: 68},
	{Name: "nb_scan_forward", Kind: binblock.Int16},
}

// Spectrum is one decoded FTS1 file.
type Spectrum struct {
	Name             string    `json:"name"`
	FType            string    `json:"ftype"`
	SourceID         int       `json:"source_id"`
	DatetimeBegin    time.Time `json:"datetime_begin"`
	DatetimeEnd      time.Time `json:"datetime_end"`
	DatetimeAvg      time.Time `json:"datetime_avg"`
	CorrectionFactor float64   `json:"correction_factor"`
	Aperture         float64   `json:"aperture"`
	NScanBackward    int       `json:"nb_scan_backward"`
	NScanForward     int       `json:"nb_scan_forward"`
	NPoints          int       `json:"n_points"`
	WavenumberBegin  float64   `json:"wavenumber_begin"`
	WavenumberEnd    float64   `json:"wavenumber_end"`
	WavenumberStep   float64   `json:"wavenumber_step"`
	Resolution       float64   `json:"resolution"`
	SunElevation     float64   `json:"sun_elevation"`
	SNRatio          int       `json:"sn_ratio"`
	SecZ             float64   `json:"secz"`
	Data             []float32 `json:"data,omitempty"`
}

// Open reads and decodes an FTS1 spectrum file.
func Open(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rec, err := binblock.Read(f, headerLayout, binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("%s: header: %w", path, err)
	}

	sp := &Spectrum{
		Name:             spectra.TrimText(rec.Bytes("name")),
		FType:            spectra.TrimText(rec.Bytes("ftype")),
		SourceID:         spectra.SourceID(spectra.TrimText(rec.Bytes("source"))),
		CorrectionFactor: rec.Float("correction_factor"),
		Aperture:         rec.Float("aperture"),
		NScanBackward:    int(rec.Int("nb_scan_backward")),
		NScanForward:     int(rec.Int("nb_scan_forward")),
		NPoints:          int(rec.Int("n_points")),
		WavenumberBegin:  rec.Float("wavenumber_begin"),
		WavenumberEnd:    rec.Float("wavenumber_end"),
		SunElevation:     rec.Float("sun_elevation"),
		SNRatio:          int(rec.Int("sn_ratio")),
		SecZ:             rec.Float("secz"),
	}

	sp.DatetimeBegin = spectra.YearDayTime(
		int(rec.Int("year_begin")), int(rec.Int("dayofyear_begin")), 0)
	sp.DatetimeEnd = spectra.YearDayTime(
		int(rec.Int("year_end")), int(rec.Int("dayofyear_end")), 0)
	// Mid-point of the measurement window plus the stored hour offset.
	half := sp.DatetimeEnd.Sub(sp.DatetimeBegin) / 2
	hour := rec.Float("hour_avg")
	sp.DatetimeAvg = sp.DatetimeBegin.Add(half).
		Add(time.Duration(hour * 3600 * float64(time.Second)))

	// resolution = 500 / optical path difference
	if opd := rec.Float("opd"); opd != 0 {
		sp.Resolution = 500 / opd
	}
	if sp.NPoints != 0 {
		sp.WavenumberStep = (sp.WavenumberEnd - sp.WavenumberBegin) / float64(sp.NPoints)
	}

	if _, err := f.Seek(headerSize, 0); err != nil {
		return nil, fmt.Errorf("%s: seek to data: %w", path, err)
	}
	data, err := spectra.ReadSamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: data: %w", path, err)
	}
	// Files carry trailing padding beyond the declared point count.
	if sp.NPoints >= 0 && sp.NPoints < len(data) {
		data = data[:sp.NPoints]
	}
	sp.Data = data

	return sp, nil
}

// Summary returns the format-independent view of the spectrum.
func (s *Spectrum) Summary() spectra.Summary {
	return spectra.Summary{
		Format:          "fts1",
		Name:            s.Name,
		DatetimeAvg:     s.DatetimeAvg,
		WavenumberBegin: s.WavenumberBegin,
		WavenumberEnd:   s.WavenumberEnd,
		WavenumberStep:  s.WavenumberStep,
		Resolution:      s.Resolution,
		NPoints:         s.NPoints,
		Samples:         len(s.Data),
	}
}
