package views

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/calloway/scribe/internal/models"
	"github.com/calloway/scribe/internal/outline"
	"github.com/calloway/scribe/internal/scan"
	"github.com/calloway/scribe/internal/storage"
)

// Fixed grouping buckets for the marker panel.
const (
	NoCategoryLabel     = "General"
	UnknownChapterLabel = "Unknown Chapter"
)

// ChapterGroup is one chapter's markers inside a category.
type ChapterGroup struct {
	Chapter string          `json:"chapter"`
	Markers []models.Marker `json:"markers"`
}

// MarkerGroup is one category of markers, sub-grouped by chapter.
type MarkerGroup struct {
	Category string         `json:"category"`
	Chapters []ChapterGroup `json:"chapters"`
}

// Markers owns the story-marker view.
type Markers struct {
	store      storage.Provider
	contentDir string
	logger     *slog.Logger
	onChange   func()

	mu      sync.RWMutex
	markers []models.Marker
	filter  string
}

// NewMarkers creates an empty marker view.
func NewMarkers(store storage.Provider, contentDir string, logger *slog.Logger, onChange func()) *Markers {
	return &Markers{store: store, contentDir: contentDir, logger: logger, onChange: onChange}
}

// Refresh rescans every content file for #! marker lines.
func (v *Markers) Refresh(ctx context.Context) error {
	metas, err := v.store.List(v.contentDir)
	if err != nil {
		return err
	}

	var found []models.Marker
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := v.store.Read(m.Path)
		if err != nil {
			v.logger.Warn("markers: read failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		found = append(found, scan.Markers(string(data), scan.FileInfo{
			Path:     m.Path,
			FileName: filepath.Base(m.Path),
		})...)
	}

	v.mu.Lock()
	v.markers = found
	v.mu.Unlock()

	if v.onChange != nil {
		v.onChange()
	}
	return nil
}

// All returns the current markers, honouring the view filter.
func (v *Markers) All() []models.Marker {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []models.Marker
	for _, m := range v.markers {
		if v.filter != "" && !matchMarker(m, v.filter) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Grouped returns markers grouped by category, then by the chapter of their
// owning file. Absent categories bucket under NoCategoryLabel; files with no
// chapter metadata bucket under UnknownChapterLabel, always sorted last.
func (v *Markers) Grouped() []MarkerGroup {
	byCategory := make(map[string]map[string][]models.Marker)
	for _, m := range v.All() {
		cat := m.Category
		if cat == "" {
			cat = NoCategoryLabel
		}
		ch := m.Chapter
		if ch == "" {
			ch = UnknownChapterLabel
		}
		if byCategory[cat] == nil {
			byCategory[cat] = make(map[string][]models.Marker)
		}
		byCategory[cat][ch] = append(byCategory[cat][ch], m)
	}

	cats := make([]string, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	out := make([]MarkerGroup, 0, len(cats))
	for _, cat := range cats {
		chapters := make([]string, 0, len(byCategory[cat]))
		for ch := range byCategory[cat] {
			chapters = append(chapters, ch)
		}
		sort.Slice(chapters, func(i, j int) bool {
			a, b := chapters[i], chapters[j]
			if a == UnknownChapterLabel {
				return false
			}
			if b == UnknownChapterLabel {
				return true
			}
			return outline.CompareChapterNums(a, b) < 0
		})
		grp := MarkerGroup{Category: cat}
		for _, ch := range chapters {
			grp.Chapters = append(grp.Chapters, ChapterGroup{
				Chapter: ch,
				Markers: byCategory[cat][ch],
			})
		}
		out = append(out, grp)
	}
	return out
}

// SetFilter sets the view's case-insensitive substring filter.
func (v *Markers) SetFilter(q string) {
	v.mu.Lock()
	v.filter = strings.ToLower(q)
	v.mu.Unlock()
}

// ClearFilter removes the view filter.
func (v *Markers) ClearFilter() {
	v.SetFilter("")
}

func matchMarker(m models.Marker, filter string) bool {
	return strings.Contains(strings.ToLower(m.Text), filter) ||
		strings.Contains(strings.ToLower(m.Category), filter)
}
