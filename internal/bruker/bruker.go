// Package bruker reads FTIR spectra measured with the Bruker instrument
// at the Jungfraujoch station. The layout derives from Bruker's OPUS
// container: a 1280-byte header followed by little-endian float32
// samples. Several header floats are stored as split (integer,
// fractional/2^24) pairs and the acquisition date and time live in two
// bit-packed 4-byte blocks.
package bruker

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/girpas-ulg/spector/internal/binblock"
	"github.com/girpas-ulg/spector/internal/bitio"
	"github.com/girpas-ulg/spector/internal/spectra"
)

var headerLayout = binblock.Layout{
	{Kind: binblock.Pad, Len: 4},
	{Name: "name", Kind: binblock.Bytes, Len: 12},
	{Kind: binblock.Pad, Len: 4},
	{Name: "n_points", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 236},
	{Name: "n_points2", Kind: binblock.Int32},
	{Name: "n_scan_forward", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 4},
	{Name: "scale_factor", Kind: binblock.Int32},
	{Name: "waven_begin_i", Kind: binblock.Int32},
	{Name: "waven_begin_d", Kind: binblock.Int32},
	{Name: "waven_end_i", Kind: binblock.Int32},
	{Name: "waven_end_d", Kind: binblock.Int32},
	{Name: "date_block", Kind: binblock.Bytes, Len: 4},
	{Name: "time_block", Kind: binblock.Bytes, Len: 4},
	{Kind: binblock.Pad, Len: 16},
	{Name: "sn_ratio", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 36},
	{Name: "aperture_id", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 12},
	{Name: "beamsplitter_id", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 152},
	{Name: "laserf_i", Kind: binblock.Int32},
	{Name: "laserf_d", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 32},
	{Name: "filter_id", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 124},
	{Name: "source_id", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 348},
	{Name: "resolution_i", Kind: binblock.Int32},
	{Name: "resolution_d", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 92},
	{Name: "correction_factor", Kind: binblock.Float32},
	{Name: "sun_elevation", Kind: binblock.Float32},
	{Kind: binblock.Pad, Len: 124},
}

// Spectrum is one decoded Bruker file.
type Spectrum struct {
	Name             string    `json:"name"`
	NPoints          int       `json:"n_points"`
	NScanForward     int       `json:"n_scan_forward"`
	ScaleFactor      int       `json:"scale_factor"`
	SNRatio          int       `json:"sn_ratio"`
	ApertureID       int       `json:"aperture_id"`
	BeamsplitterID   int       `json:"beamsplitter_id"`
	FilterID         int       `json:"filter_id"`
	SourceID         int       `json:"source_id"`
	DatetimeAvg      time.Time `json:"datetime_avg"`
	WavenumberBegin  float64   `json:"wavenumber_begin"`
	WavenumberEnd    float64   `json:"wavenumber_end"`
	WavenumberStep   float64   `json:"wavenumber_step"`
	LaserFrequency   float64   `json:"laser_frequency"`
	Resolution       float64   `json:"resolution"`
	CorrectionFactor float64   `json:"correction_factor"`
	SunElevation     float64   `json:"sun_elevation"`
	Data             []float32 `json:"data,omitempty"`
}

// Open reads and decodes a Bruker spectrum file.
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

	// Two copies of the point count are stored; they must agree and
	// the second one is authoritative.
	n1, n2 := rec.Int("n_points"), rec.Int("n_points2")
	if n1 != n2 {
		return nil, fmt.Errorf("%s: point count mismatch (%d, %d)", path, n1, n2)
	}

	sp := &Spectrum{
		Name:             spectra.TrimText(rec.Bytes("name")),
		NPoints:          int(n2),
		NScanForward:     int(rec.Int("n_scan_forward")),
		ScaleFactor:      int(rec.Int("scale_factor")),
		SNRatio:          int(rec.Int("sn_ratio")),
		ApertureID:       int(rec.Int("aperture_id")),
		BeamsplitterID:   int(rec.Int("beamsplitter_id")),
		FilterID:         int(rec.Int("filter_id")),
		SourceID:         int(rec.Int("source_id")),
		CorrectionFactor: rec.Float("correction_factor"),
		SunElevation:     rec.Float("sun_elevation"),
	}

	sp.DatetimeAvg, err = decodeDatetime(rec.Bytes("date_block"), rec.Bytes("time_block"))
	if err != nil {
		return nil, fmt.Errorf("%s: datetime: %w", path, err)
	}

	sp.WavenumberBegin = bitio.FixedPoint(
		int32(rec.Int("waven_begin_i")), int32(rec.Int("waven_begin_d")))
	sp.WavenumberEnd = bitio.FixedPoint(
		int32(rec.Int("waven_end_i")), int32(rec.Int("waven_end_d")))
	sp.LaserFrequency = bitio.FixedPoint(
		int32(rec.Int("laserf_i")), int32(rec.Int("laserf_d")))
	sp.Resolution = bitio.FixedPoint(
		int32(rec.Int("resolution_i")), int32(rec.Int("resolution_d")))

	// The stored end wavenumber is exclusive; pull it back by one step
	// so it names the last sample.
	if sp.NPoints != 0 {
		sp.WavenumberStep = (sp.WavenumberEnd - sp.WavenumberBegin) / float64(sp.NPoints)
		sp.WavenumberEnd -= sp.WavenumberStep
	}

	// Resolution is stored at a 1/1000 scale. The physical unit is not
	// documented; the factor is an opaque pass-through.
	sp.Resolution *= 1e3

	sp.Data, err = spectra.ReadSamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: data: %w", path, err)
	}

	return sp, nil
}

// decodeDatetime unpacks the bit-packed acquisition timestamp. Within
// the 4-byte date block, bits [0:6) hold the day, [6:12) the month and
// [12:24) the year; within the time block, [0:12) hold seconds in
// tenths, [12:18) the minute and [18:24) the hour. Every slice is read
// with the bit order reversed.
func decodeDatetime(dateBlock, timeBlock []byte) (time.Time, error) {
	dateBits := bitio.BytesToBits(dateBlock, false)
	timeBits := bitio.BytesToBits(timeBlock, false)
	if len(dateBits) < 24 || len(timeBits) < 24 {
		return time.Time{}, fmt.Errorf("date/time blocks too short")
	}

	day, err := bitio.BitsToInt(dateBits[0:6], true)
	if err != nil {
		return time.Time{}, err
	}
	month, err := bitio.BitsToInt(dateBits[6:12], true)
	if err != nil {
		return time.Time{}, err
	}
	year, err := bitio.BitsToInt(dateBits[12:24], true)
	if err != nil {
		return time.Time{}, err
	}
	deciseconds, err := bitio.BitsToInt(timeBits[0:12], true)
	if err != nil {
		return time.Time{}, err
	}
	minute, err := bitio.BitsToInt(timeBits[12:18], true)
	if err != nil {
		return time.Time{}, err
	}
	hour, err := bitio.BitsToInt(timeBits[18:24], true)
	if err != nil {
		return time.Time{}, err
	}

	sec := int(deciseconds / 10)
	micro := int(deciseconds%10) * 100_000

	return time.Date(int(year), time.Month(month), int(day),
		int(hour), int(minute), sec, micro*1000, time.UTC), nil
}

// Summary returns the format-independent view of the spectrum.
func (s *Spectrum) Summary() spectra.Summary {
	return spectra.Summary{
		Format:          "bruker",
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
