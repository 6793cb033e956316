package scratchpad

import (
	"strings"
	"unicode"
)

// isCJK reports whether r belongs to a script written without word separators.
func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul, unicode.Bopomofo)
}

// containsCJK reports whether text holds at least one CJK rune.
func containsCJK(text string) bool {
	for _, r := range text {
		if isCJK(r) {
			return true
		}
	}
	return false
}

// textRuns returns the lowercase maximal runs of letters and numbers in text.
func textRuns(text string) []string {
	var (
		runs []string
		run  []rune
	)
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			run = append(run, unicode.ToLower(r))
			continue
		}
		if len(run) > 0 {
			runs = append(runs, string(run))
			run = run[:0]
		}
	}
	if len(run) > 0 {
		runs = append(runs, string(run))
	}
	return runs
}

// isPureCJK reports whether every rune of run is CJK.
func isPureCJK(run string) bool {
	if run == "" {
		return false
	}
	for _, r := range run {
		if !isCJK(r) {
			return false
		}
	}
	return true
}

// indexTokens splits text the way the full-text index sees it.
//
// Tokens are lowercase maximal runs of letters and numbers. A run made only of
// CJK runes becomes one token per rune; a mixed run such as "react基礎" stays whole.
func indexTokens(text string) []string {
	var tokens []string
	for _, run := range textRuns(text) {
		if !isPureCJK(run) {
			tokens = append(tokens, run)
			continue
		}
		for _, r := range run {
			tokens = append(tokens, string(r))
		}
	}
	return tokens
}

// indexProjection renders text as the space-joined token stream stored in the index.
func indexProjection(text string) string {
	return strings.Join(indexTokens(text), " ")
}

// ftsPhrase quotes a token sequence as one FTS5 phrase.
func ftsPhrase(tokens []string) string {
	return `"` + strings.Join(tokens, " ") + `"`
}

// ftsQuote quotes a raw word as an FTS5 string, doubling embedded quotes.
func ftsQuote(word string) string {
	return `"` + strings.ReplaceAll(word, `"`, `""`) + `"`
}

// escapeLike escapes LIKE wildcards so user input matches literally with ESCAPE '\'.
func escapeLike(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(text)
}

// countSubstring counts non-overlapping case-insensitive occurrences of needle in haystack.
func countSubstring(haystack, needle string) int {
	if needle == "" || haystack == "" {
		return 0
	}
	return strings.Count(strings.ToLower(haystack), strings.ToLower(needle))
}

// countTokenSequence counts non-overlapping occurrences of needle as a consecutive run in haystack.
func countTokenSequence(haystack, needle []string) int {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return 0
	}

	count := 0
	for i := 0; i+len(needle) <= len(haystack); {
		matched := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				matched = false
				break
			}
		}
		if matched {
			count++
			i += len(needle)
			continue
		}
		i++
	}
	return count
}
