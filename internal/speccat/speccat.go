// Package speccat reads the legacy spectra description catalogs
// ("SPyy"/"BRyy" files): one file holds the metadata of every spectrum
// measured in a year, not the sample data itself. The prefix tells the
// instrument apart (SP = hp1000, BR = Bruker).
package speccat

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/girpas-ulg/spector/internal/binblock"
	"github.com/girpas-ulg/spector/internal/bitio"
	"github.com/girpas-ulg/spector/internal/spectra"
)

// stampLayout is the fixed date format of the header stamps. The stamps
// are not always well formed; parsing failures degrade to the raw text.
const stampLayout = "2 Jan 2006 15:04:05"

var headerLayout = binblock.Layout{
	{Name: "n_records", Kind: binblock.Int32},
	{Name: "created_pc", Kind: binblock.Bytes, Len: 20},
	{Name: "modified_pc", Kind: binblock.Bytes, Len: 20},
	{Name: "created_hp1000", Kind: binblock.Bytes, Len: 20},
	{Name: "modified_hp1000", Kind: binblock.Bytes, Len: 20},
	{Kind: binblock.Pad, Len: 44},
}

var recordLayout = binblock.Layout{
	{Name: "name", Kind: binblock.Bytes, Len: 12},
	{Name: "hour_begin", Kind: binblock.Float32},
	{Name: "hour_end", Kind: binblock.Float32},
	{Name: "hour_avg", Kind: binblock.Float32},
	{Name: "sun_elevation", Kind: binblock.Float32},
	{Name: "air_mass", Kind: binblock.Float32},
	{Name: "mec_velocity", Kind: binblock.Int16},
	{Name: "filter_io_ratio", Kind: binblock.Int16},
	{Name: "sampling_frequency", Kind: binblock.Int32},
	{Kind: binblock.Pad, Len: 2},
	{Name: "n_points_itf", Kind: binblock.Int16},
	{Name: "n_points_fft", Kind: binblock.Int16},
	{Name: "source_id", Kind: binblock.Int16},
	{Name: "detector_id", Kind: binblock.Int16},
	{Name: "beamsplitter_id", Kind: binblock.Int16},
	{Name: "filter_id", Kind: binblock.Int16},
	{Name: "n_scan_forward", Kind: binblock.Int16},
	{Name: "n_scan_backward", Kind: binblock.Int16},
	{Name: "sn_ratio", Kind: binblock.Int16},
	{Name: "aperture", Kind: binblock.Float32},
	{Name: "detector_potential", Kind: binblock.Int16},
	{Name: "resistance", Kind: binblock.Int16},
	{Name: "tape_id", Kind: binblock.Int16},
	{Name: "max_transmittance", Kind: binblock.Float32},
	{Name: "band_id", Kind: binblock.Int16},
	{Name: "rms_noise", Kind: binblock.Float32},
	{Name: "year_avg", Kind: binblock.Int16},
	{Name: "dayofyear_avg", Kind: binblock.Int16},
	{Name: "year_begin", Kind: binblock.Int16},
	{Name: "dayofyear_begin", Kind: binblock.Int16},
	{Name: "year_end", Kind: binblock.Int16},
	{Name: "dayofyear_end", Kind: binblock.Int16},
	{Kind: binblock.Pad, Len: 2},
	{Name: "quality", Kind: binblock.Bytes, Len: 2},
	{Kind: binblock.Pad, Len: 2},
	{Name: "temperature", Kind: binblock.Int16},
	{Name: "pressure", Kind: binblock.Int16},
	{Name: "relative_humidity", Kind: binblock.Bytes, Len: 1},
	{Name: "tropopause_height", Kind: binblock.Bytes, Len: 1},
	{Name: "wavenumber_begin", Kind: binblock.Float32},
	{Name: "wavenumber_end", Kind: binblock.Float32},
	{Name: "n_points", Kind: binblock.Int32},
	{Name: "resolution", Kind: binblock.Float32},
	{Name: "wavenumber_step", Kind: binblock.Float64},
}

// Sentinel values marking an undefined measurement.
const (
	undefTemperature      = -9999
	undefPressure         = -9999
	undefRelativeHumidity = -99
	undefTropopauseHeight = -9
)

// Float is a measurement that may be undefined: the sentinel values in
// the records decode to NaN, which renders as null in JSON.
type Float float64

// MarshalJSON renders NaN as null and any other value as a number.
func (f Float) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

// Stamp is a header date stamp. The legacy tooling wrote these by hand
// in places, so a stamp that does not parse keeps its raw text.
type Stamp struct {
	Time time.Time
	Raw  string
}

// Parsed reports whether the stamp carries a valid timestamp.
func (s Stamp) Parsed() bool { return !s.Time.IsZero() }

func (s Stamp) String() string {
	if s.Parsed() {
		return s.Time.Format(stampLayout)
	}
	return s.Raw
}

// MarshalJSON renders the timestamp when parsed, the raw text otherwise.
func (s Stamp) MarshalJSON() ([]byte, error) {
	if s.Parsed() {
		return s.Time.MarshalJSON()
	}
	return []byte(fmt.Sprintf("%q", s.Raw)), nil
}

func parseStamp(b []byte) Stamp {
	raw := spectra.TrimText(b)
	if t, err := time.Parse(stampLayout, raw); err == nil {
		return Stamp{Time: t}
	}
	return Stamp{Raw: raw}
}

// Header is the catalog file header.
type Header struct {
	NRecords       int   `json:"n_records"`
	CreatedPC      Stamp `json:"created_pc"`
	ModifiedPC     Stamp `json:"modified_pc"`
	CreatedHP1000  Stamp `json:"created_hp1000"`
	ModifiedHP1000 Stamp `json:"modified_hp1000"`
}

// Quality is the decoded 16-bit quality field of a record: independent
// flags plus a 2-bit fringing level and a 3-bit weather code. Bit 12 is
// unused. The sun-centered bit is stored inverted on disk.
type Quality struct {
	IsBadSpectrum          bool `json:"is_bad_spectrum"`
	IsMeanSpectrum         bool `json:"is_mean_spectrum"`
	IsBadZero              bool `json:"is_bad_zero"`
	FringingLevel          int  `json:"fringing_level"`
	HasBadSNRatio          bool `json:"has_bad_sn_ratio"`
	HasBadILS              bool `json:"has_bad_ils"`
	IsSunCentered          bool `json:"is_sun_centered"`
	HasPollution           bool `json:"has_pollution"`
	HasSlowSignalVariation bool `json:"has_slow_signal_variation"`
	HasFastSignalVariation bool `json:"has_fast_signal_variation"`
	HasTechnicalProblem    bool `json:"has_technical_problem"`
	WeatherID              int  `json:"weather_id"`
}

func decodeQuality(raw []byte) Quality {
	qb := bitio.BytesToBits(raw, false)
	level, _ := bitio.BitsToInt(qb[3:5], false)
	weather, _ := bitio.BitsToInt(qb[13:16], false)
	return Quality{
		IsBadSpectrum:          qb[0] != 0,
		IsMeanSpectrum:         qb[1] != 0,
		IsBadZero:              qb[2] != 0,
		FringingLevel:          int(level),
		HasBadSNRatio:          qb[5] != 0,
		HasBadILS:              qb[6] != 0,
		IsSunCentered:          qb[7] == 0,
		HasPollution:           qb[8] != 0,
		HasSlowSignalVariation: qb[9] != 0,
		HasFastSignalVariation: qb[10] != 0,
		HasTechnicalProblem:    qb[11] != 0,
		WeatherID:              int(weather),
	}
}

// Record is the decoded metadata of one spectrum.
type Record struct {
	Name              string    `json:"name"`
	SunElevation      float64   `json:"sun_elevation"`
	AirMass           float64   `json:"air_mass"`
	MecVelocity       int       `json:"mec_velocity"`
	FilterIORatio     int       `json:"filter_io_ratio"`
	SamplingFrequency int       `json:"sampling_frequency"`
	NPointsITF        int       `json:"n_points_itf"`
	NPointsFFT        int       `json:"n_points_fft"`
	SourceID          int       `json:"source_id"`
	DetectorID        int       `json:"detector_id"`
	BeamsplitterID    int       `json:"beamsplitter_id"`
	FilterID          int       `json:"filter_id"`
	NScanForward      int       `json:"n_scan_forward"`
	NScanBackward     int       `json:"n_scan_backward"`
	SNRatio           int       `json:"sn_ratio"`
	Aperture          float64   `json:"aperture"`
	DetectorPotential int       `json:"detector_potential"`
	Resistance        float64   `json:"resistance"`
	TapeID            int       `json:"tape_id"`
	MaxTransmittance  float64   `json:"max_transmittance"`
	BandID            int       `json:"band_id"`
	RMSNoise          float64   `json:"rms_noise"`
	DatetimeAvg       time.Time `json:"datetime_avg"`
	DatetimeBegin     time.Time `json:"datetime_begin"`
	DatetimeEnd       time.Time `json:"datetime_end"`
	Temperature       Float     `json:"temperature"`
	Pressure          Float     `json:"pressure"`
	RelativeHumidity  Float     `json:"relative_humidity"`
	TropopauseHeight  Float     `json:"tropopause_height"`
	WavenumberBegin   float64   `json:"wavenumber_begin"`
	WavenumberEnd     float64   `json:"wavenumber_end"`
	WavenumberStep    float64   `json:"wavenumber_step"`
	NPoints           int       `json:"n_points"`
	Resolution        float64   `json:"resolution"`
	Quality           Quality   `json:"quality"`
}

// Catalog is one decoded description file.
type Catalog struct {
	Header  Header   `json:"header"`
	Records []Record `json:"records"`
}

// Open reads and decodes a spectra description file.
func Open(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	hrec, err := binblock.Read(f, headerLayout, binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("%s: header: %w", path, err)
	}
	header := Header{
		NRecords:       int(hrec.Int("n_records")),
		CreatedPC:      parseStamp(hrec.Bytes("created_pc")),
		ModifiedPC:     parseStamp(hrec.Bytes("modified_pc")),
		CreatedHP1000:  parseStamp(hrec.Bytes("created_hp1000")),
		ModifiedHP1000: parseStamp(hrec.Bytes("modified_hp1000")),
	}

	records := make([]Record, 0, header.NRecords)
	for i := 0; i < header.NRecords; i++ {
		// Records alternate empty/filled on disk; the first of each
		// pair is discarded, an artifact of the source format that is
		// preserved exactly.
		if _, err := binblock.Read(f, recordLayout, binary.LittleEndian); err != nil {
			return nil, fmt.Errorf("%s: record %d (skip): %w", path, i, err)
		}
		rec, err := binblock.Read(f, recordLayout, binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %w", path, i, err)
		}
		records = append(records, decodeRecord(rec))
	}

	return &Catalog{Header: header, Records: records}, nil
}

func decodeRecord(rec binblock.Record) Record {
	r := Record{
		Name:              spectra.TrimText(rec.Bytes("name")),
		SunElevation:      rec.Float("sun_elevation"),
		AirMass:           rec.Float("air_mass"),
		MecVelocity:       int(rec.Int("mec_velocity")),
		FilterIORatio:     int(rec.Int("filter_io_ratio")),
		SamplingFrequency: int(rec.Int("sampling_frequency")),
		SourceID:          int(rec.Int("source_id")),
		DetectorID:        int(rec.Int("detector_id")),
		BeamsplitterID:    int(rec.Int("beamsplitter_id")),
		FilterID:          int(rec.Int("filter_id")),
		NScanForward:      int(rec.Int("n_scan_forward")),
		NScanBackward:     int(rec.Int("n_scan_backward")),
		SNRatio:           int(rec.Int("sn_ratio")),
		Aperture:          rec.Float("aperture"),
		DetectorPotential: int(rec.Int("detector_potential")),
		TapeID:            int(rec.Int("tape_id")),
		MaxTransmittance:  rec.Float("max_transmittance"),
		BandID:            int(rec.Int("band_id")),
		RMSNoise:          rec.Float("rms_noise"),
		WavenumberBegin:   rec.Float("wavenumber_begin"),
		WavenumberEnd:     rec.Float("wavenumber_end"),
		NPoints:           int(rec.Int("n_points")),
		Resolution:        rec.Float("resolution"),
		Quality:           decodeQuality(rec.Bytes("quality")),
	}

	// The two 1-byte fields are bit-packed; run them through the bit
	// helpers like the historical tooling did.
	rh, _ := bitio.BitsToInt(bitio.BytesToBits(rec.Bytes("relative_humidity"), false), false)
	th, _ := bitio.BitsToInt(bitio.BytesToBits(rec.Bytes("tropopause_height"), false), false)

	// Sentinels mark undefined measurements.
	if t := rec.Int("temperature"); t == undefTemperature {
		r.Temperature = Float(math.NaN())
	} else {
		r.Temperature = Float(t) * 0.1 // deg celsius
	}
	if p := rec.Int("pressure"); p == undefPressure {
		r.Pressure = Float(math.NaN())
	} else {
		r.Pressure = Float(p) * 0.1 // mbar
	}
	if int64(rh) == undefRelativeHumidity {
		r.RelativeHumidity = Float(math.NaN())
	} else {
		r.RelativeHumidity = Float(rh) // percent
	}
	if int64(th) == undefTropopauseHeight {
		r.TropopauseHeight = Float(math.NaN())
	} else {
		r.TropopauseHeight = Float(th) * 0.1 // km
	}

	// Unit scales.
	r.NPointsITF = int(rec.Int("n_points_itf")) * 1000  // Kpoints -> points
	r.NPointsFFT = int(rec.Int("n_points_fft")) * 1000  // Kpoints -> points
	r.Resistance = float64(rec.Int("resistance")) * 1e3 // KOhm -> Ohm
	r.WavenumberStep = rec.Float("wavenumber_step") * 1e-3

	r.DatetimeAvg = spectra.YearDayTime(
		int(rec.Int("year_avg")), int(rec.Int("dayofyear_avg")), rec.Float("hour_avg"))
	r.DatetimeBegin = spectra.YearDayTime(
		int(rec.Int("year_begin")), int(rec.Int("dayofyear_begin")), rec.Float("hour_begin"))
	r.DatetimeEnd = spectra.YearDayTime(
		int(rec.Int("year_end")), int(rec.Int("dayofyear_end")), rec.Float("hour_end"))

	return r
}
