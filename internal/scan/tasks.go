package scan

import (
	"regexp"
	"strings"

	"github.com/calloway/scribe/internal/models"
)

var taskAnnotationRe = regexp.MustCompile(`\{([A-Z_]+):\s*([^}\n]*)\}`)

// Tasks extracts {TYPE: text} annotations from one file. TYPE is any
// uppercase word, not a fixed enum, so task categories are open-ended.
func Tasks(content string, f FileInfo) []models.Task {
	lines := strings.Split(content, "\n")
	var out []models.Task

	for i, line := range lines {
		for _, m := range taskAnnotationRe.FindAllStringSubmatch(line, -1) {
			text := strings.TrimSpace(m[2])
			if text == "" {
				continue
			}
			out = append(out, models.Task{
				Type:     m[1],
				Text:     text,
				Path:     f.Path,
				FileName: f.FileName,
				Line:     i + 1,
			})
		}
	}
	return out
}
