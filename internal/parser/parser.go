package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/versekeep/versekeep/internal/domain"
)

// A grammar attempts to split one trimmed line into verse fields. Grammars are
// tried in order and the first match wins, so new formats can be appended
// without touching existing ones.
type grammar func(line string) (domain.Verse, bool)

var grammars = []grammar{matchSpaced, matchCompact}

var (
	// "Genesis 1:1 In the beginning ..." / "1 John 3:16 For God ..."
	spacedRe = regexp.MustCompile(`^(\w+(?:\s+\w+)*)\s+(\d+):(\d+)\s+(.+)$`)
	// Reference with the chapter glued to the last book token: "Genesis1:1"
	compactRe = regexp.MustCompile(`^(\w+(?:\s+\w+)*)(\d+):(\d+)$`)
)

// ParseLine converts one raw corpus line into verse fields. Blank lines,
// comment lines starting with '#', and lines matching no grammar are rejected
// with ok=false; rejection is not an error, the caller counts it as skipped.
func ParseLine(line string) (domain.Verse, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return domain.Verse{}, false
	}
	for _, g := range grammars {
		if v, ok := g(line); ok {
			return v, true
		}
	}
	return domain.Verse{}, false
}

// IsRecord reports whether a trimmed line counts toward the import report at
// all: blank lines and '#' comments are invisible to the counts.
func IsRecord(line string) bool {
	line = strings.TrimSpace(line)
	return line != "" && !strings.HasPrefix(line, "#")
}

func matchSpaced(line string) (domain.Verse, bool) {
	m := spacedRe.FindStringSubmatch(line)
	if m == nil {
		return domain.Verse{}, false
	}
	return buildVerse(m[1], m[2], m[3], m[4])
}

// matchCompact splits the line at the first space and expects the leading
// token to be a compact reference like "Genesis1:1".
func matchCompact(line string) (domain.Verse, bool) {
	ref, text, found := strings.Cut(line, " ")
	if !found {
		return domain.Verse{}, false
	}
	m := compactRe.FindStringSubmatch(ref)
	if m == nil {
		return domain.Verse{}, false
	}
	return buildVerse(m[1], m[2], m[3], text)
}

func buildVerse(book, chapter, verse, text string) (domain.Verse, bool) {
	ch, err := strconv.Atoi(chapter)
	if err != nil || ch <= 0 {
		return domain.Verse{}, false
	}
	vs, err := strconv.Atoi(verse)
	if err != nil || vs <= 0 {
		return domain.Verse{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Verse{}, false
	}
	return domain.Verse{Book: book, Chapter: ch, Verse: vs, Text: text}, true
}
