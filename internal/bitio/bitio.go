// Package bitio converts between byte sequences, flat bit sequences and
// integers. The legacy GIRPAS formats pack several header fields at the
// bit level (dates, quality flags) and store some floats as a separate
// integer part and a 24-bit scaled fractional part; the helpers here are
// the building blocks the format readers share.
package bitio

import "errors"

// ErrNoBits is returned by BitsToInt when the bit sequence is empty.
var ErrNoBits = errors.New("bitio: empty bit sequence")

// fractional divisor of the legacy (integer, decimal) float encoding
const fixedPointScale = 1 << 24

// BytesToBits expands data into a flat sequence of 0/1 values, eight per
// byte, least-significant bit first. If swap is true the eight bits of
// each byte are reversed before being appended.
func BytesToBits(data []byte, swap bool) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		if swap {
			for i := 7; i >= 0; i-- {
				bits = append(bits, (b>>i)&1)
			}
		} else {
			for i := 0; i < 8; i++ {
				bits = append(bits, (b>>i)&1)
			}
		}
	}
	return bits
}

// BitsToInt interprets bits as a binary numeral whose first element is
// the most significant digit. If swap is true the whole sequence is
// reversed before interpretation. The caller supplies bits in whatever
// order yields the intended magnitude; an empty sequence is an error.
func BitsToInt(bits []byte, swap bool) (uint64, error) {
	if len(bits) == 0 {
		return 0, ErrNoBits
	}
	var v uint64
	if swap {
		for i := len(bits) - 1; i >= 0; i-- {
			v = v<<1 | uint64(bits[i]&1)
		}
	} else {
		for _, b := range bits {
			v = v<<1 | uint64(b&1)
		}
	}
	return v, nil
}

// FixedPoint reconstructs a float from the legacy split encoding: vi is
// the integer part and vd the fractional part scaled by 2^24.
func FixedPoint(vi, vd int32) float64 {
	return float64(vi) + float64(vd)/fixedPointScale
}
