package corpus

import (
	"strings"
	"unicode"
)

// Clean normalizes whitespace without touching line structure. Runs of spaces and
// tabs inside a line collapse to one space; leading and trailing ones are dropped.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lineStart := true
	pendingSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			b.WriteByte('\n')
			lineStart = true
			pendingSpace = false
		case unicode.IsSpace(r):
			pendingSpace = !lineStart
		default:
			if pendingSpace {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			lineStart = false
			pendingSpace = false
		}
	}
	return b.String()
}
