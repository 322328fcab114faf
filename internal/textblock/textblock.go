// Package textblock extracts typed fields from fixed-form text headers
// using a regular expression with named capture groups.
package textblock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type convKind int

const (
	convString convKind = iota
	convInt
	convFloat
	convDate
)

// Conv selects how a captured field is converted. The set of
// conversions is closed: identity, integer, float and date with a
// fixed layout.
type Conv struct {
	kind   convKind
	layout string
}

var (
	// AsString keeps the captured text as-is.
	AsString = Conv{kind: convString}
	// AsInt parses the field as a base-10 integer.
	AsInt = Conv{kind: convInt}
	// AsFloat parses the field as a float.
	AsFloat = Conv{kind: convFloat}
)

// AsDate parses the field as a time.Time using the given layout.
func AsDate(layout string) Conv {
	return Conv{kind: convDate, layout: layout}
}

// Read matches text against re and returns the named capture groups.
// A failed match is a parse error; no partial extraction happens.
// Fields listed in types are converted; numeric and date conversions
// trim surrounding spaces first (the legacy headers pad with blanks).
// Fields absent from types stay raw strings.
func Read(text string, re *regexp.Regexp, types map[string]Conv) (map[string]any, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("header %q does not match %s", text, re)
	}

	fields := make(map[string]any)
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		fields[name] = m[i]
	}

	for name, conv := range types {
		raw, ok := fields[name].(string)
		if !ok {
			continue
		}
		v, err := convert(raw, conv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields[name] = v
	}
	return fields, nil
}

func convert(raw string, conv Conv) (any, error) {
	switch conv.kind {
	case convString:
		return raw, nil
	case convInt:
		return strconv.Atoi(strings.TrimSpace(raw))
	case convFloat:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case convDate:
		return time.Parse(conv.layout, strings.TrimSpace(raw))
	default:
		return nil, fmt.Errorf("unknown conversion %d", conv.kind)
	}
}
