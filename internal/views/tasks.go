package views

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/calloway/scribe/internal/models"
	"github.com/calloway/scribe/internal/scan"
	"github.com/calloway/scribe/internal/storage"
)

// Conventional task types pinned to the front of the display order; every
// other type follows alphabetically.
var pinnedTaskTypes = []string{"TODO", "FIXME", "REVISE", "RESEARCH"}

// TaskGroup is one task type's annotations.
type TaskGroup struct {
	Type  string        `json:"type"`
	Tasks []models.Task `json:"tasks"`
}

// Tasks owns the task-annotation view.
type Tasks struct {
	store      storage.Provider
	contentDir string
	logger     *slog.Logger
	onChange   func()

	mu     sync.RWMutex
	tasks  []models.Task
	filter string
}

// NewTasks creates an empty task view.
func NewTasks(store storage.Provider, contentDir string, logger *slog.Logger, onChange func()) *Tasks {
	return &Tasks{store: store, contentDir: contentDir, logger: logger, onChange: onChange}
}

// Refresh rescans every content file for {TYPE: …} annotations.
func (v *Tasks) Refresh(ctx context.Context) error {
	metas, err := v.store.List(v.contentDir)
	if err != nil {
		return err
	}

	var found []models.Task
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := v.store.Read(m.Path)
		if err != nil {
			v.logger.Warn("tasks: read failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		found = append(found, scan.Tasks(string(data), scan.FileInfo{
			Path:     m.Path,
			FileName: filepath.Base(m.Path),
		})...)
	}

	v.mu.Lock()
	v.tasks = found
	v.mu.Unlock()

	if v.onChange != nil {
		v.onChange()
	}
	return nil
}

// All returns the current tasks, honouring the view filter.
func (v *Tasks) All() []models.Task {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []models.Task
	for _, t := range v.tasks {
		if v.filter != "" && !matchTask(t, v.filter) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Grouped returns tasks grouped by their literal type string, conventional
// types first.
func (v *Tasks) Grouped() []TaskGroup {
	byType := make(map[string][]models.Task)
	for _, t := range v.All() {
		byType[t.Type] = append(byType[t.Type], t)
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		pi, pj := pinIndex(types[i]), pinIndex(types[j])
		if pi != pj {
			return pi < pj
		}
		return types[i] < types[j]
	})

	out := make([]TaskGroup, 0, len(types))
	for _, t := range types {
		out = append(out, TaskGroup{Type: t, Tasks: byType[t]})
	}
	return out
}

func pinIndex(t string) int {
	for i, p := range pinnedTaskTypes {
		if t == p {
			return i
		}
	}
	return len(pinnedTaskTypes)
}

// SetFilter sets the view's case-insensitive substring filter.
func (v *Tasks) SetFilter(q string) {
	v.mu.Lock()
	v.filter = strings.ToLower(q)
	v.mu.Unlock()
}

// ClearFilter removes the view filter.
func (v *Tasks) ClearFilter() {
	v.SetFilter("")
}

func matchTask(t models.Task, filter string) bool {
	return strings.Contains(strings.ToLower(t.Text), filter) ||
		strings.Contains(strings.ToLower(t.Type), filter)
}
