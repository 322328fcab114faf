package spectra

import "time"

// YearDayTime reconstructs a timestamp from the split representation
// the legacy headers use: a year, a 1-based day-of-year and a fractional
// hour offset. Day 1 is January 1st of the year; day N is obtained by
// plain day arithmetic, so out-of-range day counts roll over into the
// next year the same way the historical tooling did.
func YearDayTime(year, dayofyear int, hours float64) time.Time {
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	t = t.AddDate(0, 0, dayofyear-1)
	return t.Add(time.Duration(hours * 3600 * float64(time.Second)))
}
