// Package spectra holds the small pieces shared by every legacy format
// reader: the light-source code table, day-of-year date reconstruction
// and a format-independent summary view.
package spectra

import "strings"

// sourceNames maps the legacy light-source codes to their names. The
// table is used in both directions: FTS1 headers store the name and
// need the code, catalog records store the code.
var sourceNames = map[int]string{
	0: "unknown",
	4: "sun",
	5: "moon",
}

// SourceName returns the name of a light-source code, "unknown" for
// codes outside the table.
func SourceName(id int) string {
	if name, ok := sourceNames[id]; ok {
		return name
	}
	return sourceNames[0]
}

// SourceID returns the code of a light-source name (case-insensitive),
// 0 when the name is not in the table.
func SourceID(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, n := range sourceNames {
		if n == name {
			return id
		}
	}
	return 0
}
