package utils

import (
	"math"
	"strings"
)

// NullableString trims s and returns a pointer to it, or nil when nothing
// is left. Optional text columns are stored as NULL rather than "".
func NullableString(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// NullableInt floors v to a non-negative integer, or returns nil when the
// value is absent or not finite. Negative inputs clamp to zero.
func NullableInt(v *float64) *int64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	n := int64(math.Floor(*v))
	if n < 0 {
		n = 0
	}
	return &n
}

// Truncate caps s at max bytes for diagnostic payloads.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
