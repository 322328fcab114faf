package spectra

import (
	"encoding/binary"
	"io"
	"math"
	"strings"
	"unicode"
)

// ReadSamples slurps the rest of r as little-endian float32 sample
// amplitudes, one value per spectral point. Trailing bytes that do not
// fill a whole float are padding and are ignored.
func ReadSamples(r io.Reader) ([]float32, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	n := len(buf) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}

// TrimText decodes a fixed-length header byte string, dropping the
// space and NUL padding the legacy writers used.
func TrimText(b []byte) string {
	return strings.TrimFunc(string(b), func(r rune) bool {
		return unicode.IsSpace(r) || r == 0
	})
}
