// Package wordcount implements the shared markup-stripping word counter.
//
// The same pipeline backs per-section counts, project totals, and page
// estimates, so all views agree on what a "word" is. Transformation order
// matters; see Strip.
package wordcount

import (
	"regexp"
	"strings"

	"github.com/calloway/scribe/internal/frontmatter"
)

// DefaultWordsPerPage is used when the configured value is not positive.
const DefaultWordsPerPage = 250

var (
	sceneBreakRe = regexp.MustCompile(`(?im)^\*\*\*\s*scene\s+\d+[^\n]*\*\*\*\s*$`)
	markerLineRe = regexp.MustCompile(`(?m)^#!.*$`)
	mentionRe    = regexp.MustCompile(`@\[([^\]\n]*)\]|@([A-Za-z0-9_]+)`)
	noteBracketRe = regexp.MustCompile(`\[[^\]\n]*\]`)
	linkRe        = regexp.MustCompile(`\[([^\]\n]*)\]\(([^)\n]*)\)`)
	taskRe        = regexp.MustCompile(`\{[A-Z_]+:[^}\n]*\}`)
	headingRe     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldRe        = regexp.MustCompile(`\*\*([^*\n]+)\*\*|__([^_\n]+)__`)
	italicRe      = regexp.MustCompile(`\*([^*\n]+)\*|_([^_\n]+)_`)
	fencedRe      = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`[^`\n]*`")

	notesHeadingRe = regexp.MustCompile(`(?i)^(#{1,6})\s+(writer'?s notes|author'?s notes|notes)\s*$`)
)

// Strip removes all non-prose markup from content, in a fixed order:
// front matter, scene breaks, marker lines, mention tokens (collapsed to
// their display name), free-form note brackets, task annotations, notes
// sections, heading markers, emphasis, links, code.
func Strip(content string) string {
	s := frontmatter.StripBody(content)
	s = sceneBreakRe.ReplaceAllString(s, "")
	s = markerLineRe.ReplaceAllString(s, "")

	// Mentions collapse to the bare name so character names still count.
	s = mentionRe.ReplaceAllString(s, "$1$2")

	// Links before general brackets so [text](url) keeps its text.
	s = linkRe.ReplaceAllString(s, "$1")
	s = noteBracketRe.ReplaceAllString(s, "")
	s = taskRe.ReplaceAllString(s, "")
	s = stripNotesSections(s)
	s = headingRe.ReplaceAllString(s, "")
	s = boldRe.ReplaceAllString(s, "$1$2")
	s = italicRe.ReplaceAllString(s, "$1$2")
	s = fencedRe.ReplaceAllString(s, "")
	s = inlineCodeRe.ReplaceAllString(s, "")
	return s
}

// stripNotesSections removes every "Writer's Notes"/"Author's Notes"/"Notes"
// section from its heading up to the next heading of the same or shallower
// depth, or end of document.
func stripNotesSections(content string) string {
	lines := strings.Split(content, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		m := notesHeadingRe.FindStringSubmatch(lines[i])
		if m == nil {
			out = append(out, lines[i])
			continue
		}
		depth := len(m[1])
		j := i + 1
		for ; j < len(lines); j++ {
			if d := headingDepth(lines[j]); d > 0 && d <= depth {
				break
			}
		}
		i = j - 1
	}
	return strings.Join(out, "\n")
}

func headingDepth(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// Count returns the number of whitespace-delimited tokens after stripping.
func Count(content string) int {
	return len(strings.Fields(Strip(content)))
}

// CountPlain counts tokens in already-stripped text.
func CountPlain(text string) int {
	return len(strings.Fields(text))
}

// Pages returns the page estimate for words at wordsPerPage, rounding up.
func Pages(words, wordsPerPage int) int {
	if wordsPerPage <= 0 {
		wordsPerPage = DefaultWordsPerPage
	}
	if words <= 0 {
		return 0
	}
	return (words + wordsPerPage - 1) / wordsPerPage
}
