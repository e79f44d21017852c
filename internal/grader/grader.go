// Package grader normalizes recall attempts and compares them against the
// canonical verse text.
package grader

import (
	"strings"
	"unicode"
)

// MaxHintLevel caps how many leading characters of each word a hint reveals.
const MaxHintLevel = 3

// Result is the outcome of grading one attempt.
type Result struct {
	Pass bool
	Hint string
}

// Normalize lowercases the text and strips every character that is not
// alphanumeric or whitespace, so that punctuation and case never fail an
// otherwise correct recall.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Grade compares an attempt against the canonical text. On failure the result
// carries a progressive hint: each canonical word keeps its first min(attempt,
// MaxHintLevel) characters and masks the rest with underscores. The attempt
// counter is 1-based and owned by the caller, which also decides when to give
// up and reveal the text.
func Grade(attempt, canonical string, attemptNumber int) Result {
	if Normalize(attempt) == Normalize(canonical) {
		return Result{Pass: true}
	}
	return Result{Hint: Hint(canonical, attemptNumber)}
}

// Hint masks the canonical text, revealing the first min(level, MaxHintLevel)
// characters of every word.
func Hint(canonical string, level int) string {
	if level < 1 {
		level = 1
	}
	if level > MaxHintLevel {
		level = MaxHintLevel
	}

	words := strings.Fields(canonical)
	hinted := make([]string, len(words))
	for i, word := range words {
		runes := []rune(word)
		visible := level
		if visible > len(runes) {
			visible = len(runes)
		}
		hinted[i] = string(runes[:visible]) + strings.Repeat("_", len(runes)-visible)
	}
	return strings.Join(hinted, " ")
}
