// Package rinsland reads spectra stored in the Rinsland exchange
// format: an 80-character ASCII header, a small binary sub-header with
// the wavenumber grid, then little-endian float32 samples.
package rinsland

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/girpas-ulg/spector/internal/binblock"
	"github.com/girpas-ulg/spector/internal/spectra"
	"github.com/girpas-ulg/spector/internal/textblock"
)

const asciiHeaderSize = 80

var headerRegex = regexp.MustCompile(
	`(?P<spec_type>[A-Z]{3})-` +
		`(?P<name>[\w.]{12}) ` +
		`(?P<date>[\w ]{11})  ` +
		`(?P<resolution>[\d.]+)mK ` +
		`(?P<aperture>[\d.]+) mm ` +
		`Ap.ZA=(?P<zenith_angle>[\d.]+) ` +
		`S/N=(?P<sn_ratio>[\d ]+) ` +
		`h=(?P<hour_avg>[\d.]+)`)

var headerTypes = map[string]textblock.Conv{
	"spec_type":    textblock.AsString,
	"name":         textblock.AsString,
	"date":         textblock.AsDate("2 Jan 2006"),
	"resolution":   textblock.AsFloat,
	"aperture":     textblock.AsFloat,
	"zenith_angle": textblock.AsFloat,
	"sn_ratio":     textblock.AsInt,
	"hour_avg":     textblock.AsFloat,
}

var dataHeaderLayout = binblock.Layout{
	{Name: "wavenumber_begin", Kind: binblock.Float64},
	{Name: "wavenumber_end", Kind: binblock.Float64},
	{Name: "wavenumber_step", Kind: binblock.Float64},
	{Name: "n_points", Kind: binblock.Int32},
}

// Spectrum is one decoded Rinsland file.
type Spectrum struct {
	SpecType        string    `json:"spec_type"`
	Name            string    `json:"name"`
	Resolution      float64   `json:"resolution"`
	Aperture        float64   `json:"aperture"`
	ZenithAngle     float64   `json:"zenith_angle"`
	SNRatio         int       `json:"sn_ratio"`
	DatetimeAvg     time.Time `json:"datetime_avg"`
	WavenumberBegin float64   `json:"wavenumber_begin"`
	WavenumberEnd   float64   `json:"wavenumber_end"`
	WavenumberStep  float64   `json:"wavenumber_step"`
	NPoints         int       `json:"n_points"`
	Data            []float32 `json:"data,omitempty"`
}

// Open reads and decodes a Rinsland spectrum file.
func Open(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, asciiHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%s: header: %w", path, err)
	}

	fields, err := textblock.Read(string(header), headerRegex, headerTypes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	sp := &Spectrum{
		SpecType:    fields["spec_type"].(string),
		Name:        fields["name"].(string),
		Resolution:  fields["resolution"].(float64),
		Aperture:    fields["aperture"].(float64),
		ZenithAngle: fields["zenith_angle"].(float64),
		SNRatio:     fields["sn_ratio"].(int),
	}

	date := fields["date"].(time.Time)
	hour := fields["hour_avg"].(float64)
	sp.DatetimeAvg = date.Add(time.Duration(hour * 3600 * float64(time.Second)))

	rec, err := binblock.Read(f, dataHeaderLayout, binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("%s: data header: %w", path, err)
	}
	sp.WavenumberBegin = rec.Float("wavenumber_begin")
	sp.WavenumberEnd = rec.Float("wavenumber_end")
	sp.WavenumberStep = rec.Float("wavenumber_step")
	sp.NPoints = int(rec.Int("n_points"))

	sp.Data, err = spectra.ReadSamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: data: %w", path, err)
	}

	return sp, nil
}

// Summary returns the format-independent view of the spectrum.
func (s *Spectrum) Summary() spectra.Summary {
	return spectra.Summary{
		Format:          "rinsland",
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
