// Package scan implements the regex passes that extract character mentions,
// structure items, story markers, and task annotations from content files.
//
// Scanners are pure: they read text and return flat item lists. Aggregation,
// grouping, and file-system side effects live in the view layer.
package scan

import (
	"regexp"
	"sort"
	"strings"
)

var (
	bracketMentionRe = regexp.MustCompile(`@\[([^\]\n]+)\]`)
	bareMentionRe    = regexp.MustCompile(`@([A-Za-z0-9_]+)`)
)

// RawMention is one mention token found in a document.
type RawMention struct {
	Name   string
	Line   int // 1-based
	Column int // 0-based byte offset within the line
}

// Mentions finds every @Name and @[Multi Word Name] token in content, in
// source order. A token consumed by the bracketed form is never also
// reported by the bare form. Names are not normalised.
func Mentions(content string) []RawMention {
	var out []RawMention
	var spans [][2]int

	for _, m := range bracketMentionRe.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		line, col := lineCol(content, m[0])
		out = append(out, RawMention{Name: name, Line: line, Column: col})
		spans = append(spans, [2]int{m[0], m[1]})
	}

	for _, m := range bareMentionRe.FindAllStringSubmatchIndex(content, -1) {
		if inSpans(spans, m[0]) {
			continue
		}
		name := content[m[2]:m[3]]
		line, col := lineCol(content, m[0])
		out = append(out, RawMention{Name: name, Line: line, Column: col})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}

func inSpans(spans [][2]int, off int) bool {
	for _, s := range spans {
		if off >= s[0] && off < s[1] {
			return true
		}
	}
	return false
}

// lineCol converts a byte offset into a 1-based line and 0-based column.
func lineCol(content string, off int) (int, int) {
	line := 1 + strings.Count(content[:off], "\n")
	col := off
	if i := strings.LastIndexByte(content[:off], '\n'); i >= 0 {
		col = off - i - 1
	}
	return line, col
}
