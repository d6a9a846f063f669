package sparseindex

import (
	"regexp"
	"strings"
	"unicode"
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9_]+`)

// DefaultCodeStopWords are filtered out of every tokenized document
// and query — common keywords and punctuation-adjacent words that
// carry little discriminating signal in source code search.
var DefaultCodeStopWords = []string{
	"var", "func", "return", "if", "else", "for", "while", "switch",
	"case", "break", "continue", "import", "package", "struct", "type",
	"interface", "const", "nil", "true", "false", "err", "error",
}

// Tokenize splits text with code-aware rules: split on non-identifier
// runes, then split each identifier on snake_case and camelCase
// boundaries, lowercase, and drop tokens shorter than minLen.
func Tokenize(text string, minLen int) []string {
	var out []string
	for _, word := range tokenPattern.FindAllString(text, -1) {
		for _, part := range splitIdentifier(word) {
			lower := strings.ToLower(part)
			if len(lower) >= minLen {
				out = append(out, lower)
			}
		}
	}
	return out
}

func splitIdentifier(token string) []string {
	if strings.Contains(token, "_") {
		var out []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				out = append(out, splitCamelCase(part)...)
			}
		}
		return out
	}
	return splitCamelCase(token)
}

func splitCamelCase(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	var cur strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if (prevLower || nextLower) && cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func stopWordSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}

func dropStopWords(tokens []string, stop map[string]struct{}) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, skip := stop[t]; !skip {
			out = append(out, t)
		}
	}
	return out
}
