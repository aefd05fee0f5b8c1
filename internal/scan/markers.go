package scan

import (
	"strings"

	"github.com/calloway/scribe/internal/frontmatter"
	"github.com/calloway/scribe/internal/models"
)

// Markers extracts #! story-marker lines from one file. Markers categorised
// as "event" (any case) belong to the structure view and are filtered out
// here. The owning file's chapter number, when present in front matter, is
// attached for chapter grouping.
func Markers(content string, f FileInfo) []models.Marker {
	fm := frontmatter.Parse(content)
	chapter := fm.Get("chapter")

	lines := strings.Split(content, "\n")
	var out []models.Marker

	for i := fm.BodyLine; i < len(lines); i++ {
		m := eventLineRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		category, text := m[1], m[2]
		if strings.EqualFold(category, "event") {
			continue
		}
		if text == "" {
			continue
		}
		out = append(out, models.Marker{
			Category: category,
			Text:     text,
			Path:     f.Path,
			FileName: f.FileName,
			Line:     i + 1,
			Chapter:  chapter,
		})
	}
	return out
}
