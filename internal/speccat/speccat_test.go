package speccat

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// revByte mirrors the on-disk encoding of the 1-byte bit-packed fields:
// the decoder interprets the LSB-first bit sequence as an MSB-first
// numeral, so a value is stored with its bits reversed.
func revByte(v byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		out = out<<1 | (v>>i)&1
	}
	return out
}

func recOffset(t *testing.T, name string) int {
	t.Helper()
	off, ok := recordLayout.Offset(name)
	if !ok {
		t.Fatalf("field %s not in record layout", name)
	}
	return off
}

type testRecord struct {
	name        string
	quality     uint16
	temperature int16
	pressure    int16
	rh          byte // already in storage bit order
	th          byte
}

func encodeRecord(t *testing.T, tr testRecord) []byte {
	t.Helper()
	buf := make([]byte, recordLayout.Size())

	put16 := func(name string, v int16) {
		binary.LittleEndian.PutUint16(buf[recOffset(t, name):], uint16(v))
	}
	putF32 := func(name string, v float32) {
		binary.LittleEndian.PutUint32(buf[recOffset(t, name):], math.Float32bits(v))
	}

	copy(buf[recOffset(t, "name"):], tr.name)
	putF32("hour_begin", 9.0)
	putF32("hour_end", 10.0)
	putF32("hour_avg", 9.5)
	putF32("sun_elevation", 30.0)
	putF32("air_mass", 2.0)
	put16("mec_velocity", 4)
	put16("filter_io_ratio", 1)
	binary.LittleEndian.PutUint32(buf[recOffset(t, "sampling_frequency"):], 2500)
	put16("n_points_itf", 256)
	put16("n_points_fft", 512)
	put16("source_id", 4)
	put16("detector_id", 1)
	put16("beamsplitter_id", 2)
	put16("filter_id", 3)
	put16("n_scan_forward", 6)
	put16("n_scan_backward", 6)
	put16("sn_ratio", 400)
	putF32("aperture", 1.3)
	put16("detector_potential", 12)
	put16("resistance", 5)
	put16("tape_id", 7)
	putF32("max_transmittance", 0.82)
	put16("band_id", 3)
	putF32("rms_noise", 0.002)
	put16("year_avg", 1999)
	put16("dayofyear_avg", 60)
	put16("year_begin", 1999)
	put16("dayofyear_begin", 60)
	put16("year_end", 1999)
	put16("dayofyear_end", 60)
	binary.LittleEndian.PutUint16(buf[recOffset(t, "quality"):], tr.quality)
	put16("temperature", tr.temperature)
	put16("pressure", tr.pressure)
	buf[recOffset(t, "relative_humidity")] = tr.rh
	buf[recOffset(t, "tropopause_height")] = tr.th
	putF32("wavenumber_begin", 2000)
	putF32("wavenumber_end", 2500)
	binary.LittleEndian.PutUint32(buf[recOffset(t, "n_points"):], 4096)
	putF32("resolution", 4.0)
	binary.LittleEndian.PutUint64(buf[recOffset(t, "wavenumber_step"):], math.Float64bits(500.0))

	return buf
}

func writeTestFile(t *testing.T, recs []testRecord) string {
	t.Helper()
	header := make([]byte, headerLayout.Size())
	binary.LittleEndian.PutUint32(header, uint32(len(recs)))
	off, _ := headerLayout.Offset("created_pc")
	copy(header[off:], "01 Jan 2001 12:00:00")
	off, _ = headerLayout.Offset("modified_pc")
	copy(header[off:], "02 Feb 2001 08:15:30")
	off, _ = headerLayout.Offset("created_hp1000")
	copy(header[off:], "hp1000 master copy  ")
	off, _ = headerLayout.Offset("modified_hp1000")
	copy(header[off:], "03 Mar 2001 09:00:00")

	buf := header
	for _, tr := range recs {
		// Every record is preceded by an empty sibling on disk.
		buf = append(buf, make([]byte, recordLayout.Size())...)
		buf = append(buf, encodeRecord(t, tr)...)
	}

	path := filepath.Join(t.TempDir(), "SP99")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLayoutSizes(t *testing.T) {
	t.Parallel()
	if got := headerLayout.Size(); got != 128 {
		t.Errorf("header layout size = %d, want 128", got)
	}
	if got := recordLayout.Size(); got != 128 {
		t.Errorf("record layout size = %d, want 128", got)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()
	path := writeTestFile(t, []testRecord{
		{name: "sp990301.001", temperature: -25, pressure: 6540, rh: revByte(65), th: revByte(112)},
		{name: "sp990301.002", temperature: undefTemperature, pressure: undefPressure, rh: revByte(65), th: revByte(112)},
		{name: "sp990301.003", temperature: 10, pressure: 6500, rh: revByte(65), th: revByte(112)},
	})

	cat, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if cat.Header.NRecords != 3 {
		t.Errorf("n_records = %d, want 3", cat.Header.NRecords)
	}
	if len(cat.Records) != 3 {
		t.Fatalf("decoded %d records, want 3", len(cat.Records))
	}

	// Parseable stamps become timestamps.
	if !cat.Header.CreatedPC.Parsed() {
		t.Error("created_pc should parse")
	}
	want := time.Date(2001, time.January, 1, 12, 0, 0, 0, time.UTC)
	if !cat.Header.CreatedPC.Time.Equal(want) {
		t.Errorf("created_pc = %v, want %v", cat.Header.CreatedPC.Time, want)
	}
	// Malformed stamps degrade to the trimmed raw text.
	if cat.Header.CreatedHP1000.Parsed() {
		t.Error("created_hp1000 should not parse")
	}
	if cat.Header.CreatedHP1000.Raw != "hp1000 master copy" {
		t.Errorf("created_hp1000 raw = %q", cat.Header.CreatedHP1000.Raw)
	}

	r := cat.Records[0]
	if r.Name != "sp990301.001" {
		t.Errorf("name = %q", r.Name)
	}
	if r.Temperature != -2.5 {
		t.Errorf("temperature = %v, want -2.5", r.Temperature)
	}
	if r.Pressure != 654.0 {
		t.Errorf("pressure = %v, want 654.0", r.Pressure)
	}
	if r.RelativeHumidity != 65 {
		t.Errorf("relative_humidity = %v, want 65", r.RelativeHumidity)
	}
	if math.Abs(float64(r.TropopauseHeight)-11.2) > 1e-9 {
		t.Errorf("tropopause_height = %v, want 11.2", r.TropopauseHeight)
	}
	if r.NPointsITF != 256000 || r.NPointsFFT != 512000 {
		t.Errorf("point counts = %d/%d, want 256000/512000", r.NPointsITF, r.NPointsFFT)
	}
	if r.Resistance != 5000 {
		t.Errorf("resistance = %v, want 5000", r.Resistance)
	}
	if r.WavenumberStep != 0.5 {
		t.Errorf("wavenumber_step = %v, want 0.5", r.WavenumberStep)
	}

	// 1 Mar 1999 (day 60 of a non-leap year) + 9.5h
	wantAvg := time.Date(1999, time.March, 1, 9, 30, 0, 0, time.UTC)
	if !r.DatetimeAvg.Equal(wantAvg) {
		t.Errorf("datetime_avg = %v, want %v", r.DatetimeAvg, wantAvg)
	}
	wantBegin := time.Date(1999, time.March, 1, 9, 0, 0, 0, time.UTC)
	if !r.DatetimeBegin.Equal(wantBegin) {
		t.Errorf("datetime_begin = %v, want %v", r.DatetimeBegin, wantBegin)
	}

	// Sentinels map to NaN.
	u := cat.Records[1]
	if !math.IsNaN(float64(u.Temperature)) {
		t.Errorf("temperature = %v, want NaN", u.Temperature)
	}
	if !math.IsNaN(float64(u.Pressure)) {
		t.Errorf("pressure = %v, want NaN", u.Pressure)
	}
}

func TestRecordPairing(t *testing.T) {
	t.Parallel()
	// n_records=3 consumes exactly six fixed-size records; a file with
	// only five on disk is truncated.
	path := writeTestFile(t, []testRecord{
		{name: "a"}, {name: "b"}, {name: "c"},
	})
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf[:len(buf)-recordLayout.Size()], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected truncation error with five records for n_records=3")
	}
}

func TestDecodeQuality(t *testing.T) {
	t.Parallel()
	cases := []struct {
		bits uint16
		want Quality
	}{
		{
			bits: 1 << 0,
			want: Quality{IsBadSpectrum: true, IsSunCentered: true},
		},
		{
			bits: 1 << 7, // stored sun-centered bit is inverted
			want: Quality{IsSunCentered: false},
		},
		{
			bits: 1 << 3, // fringing level bit pair, high bit first
			want: Quality{FringingLevel: 2, IsSunCentered: true},
		},
		{
			bits: 1<<13 | 1<<15,
			want: Quality{WeatherID: 5, IsSunCentered: true},
		},
		{
			bits: 1<<1 | 1<<2 | 1<<5 | 1<<6 | 1<<8 | 1<<9 | 1<<10 | 1<<11,
			want: Quality{
				IsMeanSpectrum: true, IsBadZero: true, HasBadSNRatio: true,
				HasBadILS: true, IsSunCentered: true, HasPollution: true,
				HasSlowSignalVariation: true, HasFastSignalVariation: true,
				HasTechnicalProblem: true,
			},
		},
		{
			bits: 1 << 12, // unused bit
			want: Quality{IsSunCentered: true},
		},
	}
	for _, c := range cases {
		raw := make([]byte, 2)
		binary.LittleEndian.PutUint16(raw, c.bits)
		if got := decodeQuality(raw); got != c.want {
			t.Errorf("quality(%#04x) = %+v, want %+v", c.bits, got, c.want)
		}
	}
}
