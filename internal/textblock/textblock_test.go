package textblock

import (
	"regexp"
	"testing"
	"time"
)

var testRe = regexp.MustCompile(
	`(?P<tag>[A-Z]{3}) n=(?P<count>[\d ]+) v=(?P<value>[\d.]+) d=(?P<date>\d{2} \w{3} \d{4})`)

func TestRead(t *testing.T) {
	t.Parallel()
	fields, err := Read("ABC n=42  v=1.25 d=01 Jan 2000", testRe, map[string]Conv{
		"count": AsInt,
		"value": AsFloat,
		"date":  AsDate("02 Jan 2006"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := fields["tag"]; got != "ABC" {
		t.Errorf("tag = %v, want ABC", got)
	}
	if got := fields["count"]; got != 42 {
		t.Errorf("count = %v (%T), want 42", got, got)
	}
	if got := fields["value"]; got != 1.25 {
		t.Errorf("value = %v, want 1.25", got)
	}
	want := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := fields["date"]; !got.(time.Time).Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}
}

func TestReadNoTypes(t *testing.T) {
	t.Parallel()
	fields, err := Read("ABC n=1 v=2.0 d=02 Feb 2001", testRe, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Everything stays a raw string.
	if got := fields["count"]; got != "1" {
		t.Errorf("count = %v (%T), want \"1\"", got, got)
	}
}

func TestReadNoMatch(t *testing.T) {
	t.Parallel()
	if _, err := Read("garbage", testRe, nil); err == nil {
		t.Error("expected parse error on malformed header")
	}
}

func TestReadBadConversion(t *testing.T) {
	t.Parallel()
	re := regexp.MustCompile(`x=(?P<x>\w+)`)
	if _, err := Read("x=notanumber", re, map[string]Conv{"x": AsInt}); err == nil {
		t.Error("expected conversion error")
	}
}
