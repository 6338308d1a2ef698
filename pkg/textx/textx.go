// Package textx holds small text helpers for the prompt pipeline.
package textx

import "strings"

// SanitizeText cleans a candidate's free-text answer before it is embedded
// in a model prompt. Control characters are dropped except tab, newline and
// carriage return; surrounding whitespace is trimmed.
func SanitizeText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case r < 32 || r == 127:
			return -1
		default:
			return r
		}
	}, s))
}
