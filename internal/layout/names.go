// Package layout holds the pure grid helpers: row-name normalization,
// next free row letter and the cell map used to render a lab.
package layout

import "strings"

// NormalizeRowName trims the name, strips a leading "Row " prefix in any
// case and upper-cases the rest.  "row b" becomes "B".
func NormalizeRowName(raw string) string {
	s := strings.TrimSpace(raw) // drop surrounding whitespace
	if len(s) >= 4 && strings.EqualFold(s[:4], "row ") {
		s = strings.TrimSpace(s[4:]) // strip the human prefix
	}
	return strings.ToUpper(s)
}

// ValidRowName reports whether a normalized name is a single letter A..Z.
func ValidRowName(name string) bool {
	return len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z'
}

// NormalizeLabel trims and lower-cases a workstation label.
func NormalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NextRowName returns the first letter A..Z not present in existing once
// every name is normalized.  When all 26 letters are taken it returns "Z".
func NextRowName(existing []string) string {
	used := make(map[string]bool, len(existing)) // set of normalized names
	for _, n := range existing {
		used[NormalizeRowName(n)] = true
	}
	for ch := 'A'; ch <= 'Z'; ch++ {
		if !used[string(ch)] {
			return string(ch)
		}
	}
	return "Z"
}

// RowIndex converts a row letter into its zero-based index (A=0).
func RowIndex(name string) (int, bool) {
	n := NormalizeRowName(name)
	if !ValidRowName(n) {
		return -1, false
	}
	return int(n[0] - 'A'), true
}
