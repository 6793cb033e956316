package scratchpad

import (
	"strings"
	"unicode"
)

const snippetEllipsis = "..."

// buildSnippet returns a window of at most window runes around the first
// case-insensitive occurrence of query in content.
func buildSnippet(content, query string, window int) string {
	runes := []rune(content)
	if window <= 0 || len(runes) == 0 {
		return ""
	}
	if len(runes) <= window {
		return content
	}

	pos := indexFoldRunes(runes, []rune(strings.TrimSpace(query)))
	if pos < 0 {
		return string(runes[:window]) + snippetEllipsis
	}

	queryLen := len([]rune(strings.TrimSpace(query)))
	start := pos + queryLen/2 - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(runes) {
		end = len(runes)
		start = end - window
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(snippetEllipsis)
	}
	b.WriteString(string(runes[start:end]))
	if end < len(runes) {
		b.WriteString(snippetEllipsis)
	}
	return b.String()
}

// indexFoldRunes finds needle in haystack comparing runes case-insensitively.
func indexFoldRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		matched := true
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(r) {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}
