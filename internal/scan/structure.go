package scan

import (
	"regexp"
	"strings"

	"github.com/calloway/scribe/internal/frontmatter"
	"github.com/calloway/scribe/internal/models"
	"github.com/calloway/scribe/internal/wordcount"
)

var (
	headingLineRe   = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
	eventLineRe     = regexp.MustCompile(`^#!\s*(?:\[([^\]]*)\])?\s*(.*?)\s*$`)
	notesDenyRe     = regexp.MustCompile(`(?i)^(writer'?s notes|author'?s notes|notes)$`)
	actSignalRe     = regexp.MustCompile(`(?i)\b(act|part)\b`)
	chapterSignalRe = regexp.MustCompile(`(?i)\bchapter\b`)
	chapterFileRe   = regexp.MustCompile(`(?i)chapter[-_ ]?\d+`)
	chapterTitleRe  = regexp.MustCompile(`(?i)^chapter\s+\d+\s*:\s*(.+)$`)
)

// FileInfo identifies the content file a scanner pass is running over.
type FileInfo struct {
	Path     string // relative to the content root
	FileName string // display name (base name)
	Folder   string // containing dir relative to content root, "" for root
}

// Structure extracts heading and event items from one file. Headings on the
// notes denylist are dropped outright. Word counts cover the span from each
// heading's line up to the next non-event item (events never own a span).
func Structure(content string, f FileInfo) []models.StructureItem {
	fm := frontmatter.Parse(content)
	chapterNum := fm.Get("chapter")
	fmTitle := fm.Get("title")

	lines := strings.Split(content, "\n")
	var items []models.StructureItem
	firstHeading := true

	for i := fm.BodyLine; i < len(lines); i++ {
		if m := eventLineRe.FindStringSubmatch(lines[i]); m != nil {
			title := m[2]
			if title == "" {
				title = m[1]
			}
			if title == "" {
				continue
			}
			items = append(items, models.StructureItem{
				Title:    title,
				Depth:    models.EventDepth,
				Kind:     models.KindEvent,
				Path:     f.Path,
				FileName: f.FileName,
				Folder:   f.Folder,
				Line:     i + 1,
			})
			continue
		}

		m := headingLineRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		depth := len(m[1])
		title := m[2]
		if notesDenyRe.MatchString(title) {
			continue
		}

		kind := classify(depth, title, f.FileName, fm)
		display := displayTitle(title, chapterNum)
		if firstHeading && fmTitle != "" {
			display = fmTitle
		}
		firstHeading = false

		item := models.StructureItem{
			Title:    display,
			Depth:    depth,
			Kind:     kind,
			Path:     f.Path,
			FileName: f.FileName,
			Folder:   f.Folder,
			Line:     i + 1,
		}
		if kind == models.KindChapter {
			item.ChapterNum = chapterNum
		}
		items = append(items, item)
	}

	fillWordCounts(items, lines)
	return items
}

// classify resolves a heading's semantic type from its depth, title text,
// file name, and front matter.
func classify(depth int, title, fileName string, fm *frontmatter.Block) models.ItemKind {
	switch {
	case depth == 1:
		if actSignalRe.MatchString(title) || actSignalRe.MatchString(fileName) {
			return models.KindAct
		}
		if isChapter(title, fileName, fm) {
			return models.KindChapter
		}
		return models.KindAct
	case depth == 2:
		if isChapter(title, fileName, fm) {
			return models.KindChapter
		}
		return models.KindSection
	default:
		return models.KindSection
	}
}

func isChapter(title, fileName string, fm *frontmatter.Block) bool {
	return chapterSignalRe.MatchString(title) ||
		chapterFileRe.MatchString(fileName) ||
		fm.Has("chapter")
}

// displayTitle rewrites "Chapter N: Subtitle" to "<chapter-number>: Subtitle"
// when the file carries a dotted chapter number in front matter.
func displayTitle(title, chapterNum string) string {
	if chapterNum == "" {
		return title
	}
	if m := chapterTitleRe.FindStringSubmatch(title); m != nil {
		return chapterNum + ": " + m[1]
	}
	return title
}

// fillWordCounts assigns each non-event item the word count of its line span:
// from the item's line up to (not including) the next non-event item's line.
func fillWordCounts(items []models.StructureItem, lines []string) {
	for i := range items {
		if items[i].Kind == models.KindEvent {
			continue
		}
		start := items[i].Line - 1
		end := len(lines)
		for j := i + 1; j < len(items); j++ {
			if items[j].Kind != models.KindEvent {
				end = items[j].Line - 1
				break
			}
		}
		span := strings.Join(lines[start:end], "\n")
		items[i].WordCount = wordcount.Count(span)
	}
}
