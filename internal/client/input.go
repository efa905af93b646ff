package client

import "strings"

const numberLen = 10

// SanitizeInput keeps ASCII digits only and truncates to ten of them, the
// way the form field filters keystrokes.
func SanitizeInput(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == numberLen {
				break
			}
		}
	}
	return b.String()
}

// ValidateNumber reports whether s, once trimmed, is exactly ten digits.
func ValidateNumber(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != numberLen {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
