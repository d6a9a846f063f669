package identity

import (
	"strings"
	"unicode"
)

// tokenRender renders raw source text as a whitespace-insensitive token
// stream: runs of identifier/number characters form a single token,
// each other non-space rune (operators, braces, punctuation) forms its
// own single-rune token, and whitespace carries no token at all. Two
// inputs that differ only in spacing, indentation, or line breaks
// therefore render to the same stream, while a change to an operator,
// an identifier, or a literal changes it.
func tokenRender(content string) string {
	var b strings.Builder
	inWord := false
	for _, r := range content {
		switch {
		case unicode.IsSpace(r):
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if inWord {
				b.WriteRune(r)
			} else {
				if b.Len() > 0 {
					b.WriteByte('\x1f')
				}
				b.WriteRune(r)
				inWord = true
			}
		default:
			if b.Len() > 0 {
				b.WriteByte('\x1f')
			}
			b.WriteRune(r)
			inWord = false
		}
	}
	return b.String()
}
