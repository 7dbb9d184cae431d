package utils

import "strings"

// NormalizePlate canonicalizes a vehicle registration string for
// storage and comparison: surrounding whitespace removed, inner spaces
// collapsed away, uppercased.
func NormalizePlate(plate string) string {
	p := strings.TrimSpace(plate)
	p = strings.ReplaceAll(p, " ", "")
	return strings.ToUpper(p)
}
