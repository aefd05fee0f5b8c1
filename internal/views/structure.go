package views

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/calloway/scribe/internal/models"
	"github.com/calloway/scribe/internal/outline"
	"github.com/calloway/scribe/internal/scan"
	"github.com/calloway/scribe/internal/storage"
	"github.com/calloway/scribe/internal/wordcount"
)

// Totals are the project-wide word statistics derived during a structure
// refresh.
type Totals struct {
	Words   int            `json:"words"`
	Pages   int            `json:"pages"`
	Files   int            `json:"files"`
	PerFile map[string]int `json:"per_file"`
}

// Structure owns the outline view: the flat item list, the built tree, and
// the project word totals.
type Structure struct {
	store        storage.Provider
	contentDir   string
	wordsPerPage int
	logger       *slog.Logger
	onChange     func()

	mu     sync.RWMutex
	items  []models.StructureItem
	tree   []*outline.Node
	totals Totals
	filter string
	cache  map[string]fileEntry
}

// fileEntry caches one file's scan output keyed by content checksum, so an
// unchanged file is not re-scanned on the next refresh.
type fileEntry struct {
	checksum string
	items    []models.StructureItem
	words    int
}

// NewStructure creates an empty structure view.
func NewStructure(store storage.Provider, contentDir string, wordsPerPage int, logger *slog.Logger, onChange func()) *Structure {
	return &Structure{
		store:        store,
		contentDir:   contentDir,
		wordsPerPage: wordsPerPage,
		logger:       logger,
		onChange:     onChange,
	}
}

// Refresh rescans every content file for headings and events, rebuilds the
// tree, and recomputes totals. Per-file read failures are logged and
// skipped.
func (v *Structure) Refresh(ctx context.Context) error {
	metas, err := v.store.List(v.contentDir)
	if err != nil {
		return err
	}

	v.mu.RLock()
	oldCache := v.cache
	v.mu.RUnlock()

	var items []models.StructureItem
	perFile := make(map[string]int, len(metas))
	cache := make(map[string]fileEntry, len(metas))

	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e, ok := oldCache[m.Path]; ok && e.checksum == m.Checksum {
			items = append(items, e.items...)
			perFile[m.Path] = e.words
			cache[m.Path] = e
			continue
		}
		data, err := v.store.Read(m.Path)
		if err != nil {
			v.logger.Warn("structure: read failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		content := string(data)
		e := fileEntry{
			checksum: m.Checksum,
			items:    scan.Structure(content, v.fileInfo(m.Path)),
			words:    wordcount.Count(content),
		}
		items = append(items, e.items...)
		perFile[m.Path] = e.words
		cache[m.Path] = e
	}

	tree := outline.Build(items)

	words := 0
	for _, n := range perFile {
		words += n
	}
	totals := Totals{
		Words:   words,
		Pages:   wordcount.Pages(words, v.wordsPerPage),
		Files:   len(perFile),
		PerFile: perFile,
	}

	v.mu.Lock()
	v.items = items
	v.tree = tree
	v.totals = totals
	v.cache = cache
	v.mu.Unlock()

	if v.onChange != nil {
		v.onChange()
	}
	return nil
}

// fileInfo resolves the display name and content-root-relative folder for a
// project-relative path.
func (v *Structure) fileInfo(path string) scan.FileInfo {
	folder := ""
	if rel, err := filepath.Rel(v.contentDir, path); err == nil {
		if d := filepath.ToSlash(filepath.Dir(rel)); d != "." {
			folder = d
		}
	}
	return scan.FileInfo{
		Path:     path,
		FileName: filepath.Base(path),
		Folder:   folder,
	}
}

// Items returns the current flat item list.
func (v *Structure) Items() []models.StructureItem {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]models.StructureItem(nil), v.items...)
}

// Tree returns the navigation tree, pruned to the view filter when set:
// a node survives when its title matches or any descendant's does.
func (v *Structure) Tree() []*outline.Node {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.filter == "" {
		return v.tree
	}
	return pruneTree(v.tree, v.filter)
}

// Totals returns the latest project word statistics.
func (v *Structure) Totals() Totals {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.totals
}

// SetFilter sets the view's case-insensitive substring filter.
func (v *Structure) SetFilter(q string) {
	v.mu.Lock()
	v.filter = strings.ToLower(q)
	v.mu.Unlock()
}

// ClearFilter removes the view filter.
func (v *Structure) ClearFilter() {
	v.SetFilter("")
}

func pruneTree(nodes []*outline.Node, filter string) []*outline.Node {
	var out []*outline.Node
	for _, n := range nodes {
		kids := pruneTree(n.Children, filter)
		if len(kids) > 0 || strings.Contains(strings.ToLower(n.Title), filter) {
			clone := *n
			clone.Children = kids
			out = append(out, &clone)
		}
	}
	return out
}
