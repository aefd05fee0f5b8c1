package views

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// View is the contract every derived-view provider satisfies.
type View interface {
	Refresh(ctx context.Context) error
	SetFilter(q string)
	ClearFilter()
}

// Group coordinates refreshes across the independent views. Cross-view
// refreshes are issued concurrently and not awaited serially, so two views
// may transiently disagree about a just-edited file until both finish.
type Group struct {
	logger *slog.Logger

	mu    sync.Mutex
	views map[string]View
}

// NewGroup creates an empty view group.
func NewGroup(logger *slog.Logger) *Group {
	return &Group{logger: logger, views: map[string]View{}}
}

// Register adds a named view to the group.
func (g *Group) Register(name string, v View) {
	g.mu.Lock()
	g.views[name] = v
	g.mu.Unlock()
}

// Get returns a registered view by name.
func (g *Group) Get(name string) (View, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.views[name]
	return v, ok
}

// Names returns the registered view names, sorted.
func (g *Group) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.views))
	for n := range g.views {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (g *Group) snapshot() map[string]View {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]View, len(g.views))
	for n, v := range g.views {
		out[n] = v
	}
	return out
}

// RefreshAll fires every view's refresh concurrently and returns without
// waiting. Failures are logged per view.
func (g *Group) RefreshAll(ctx context.Context) {
	for name, v := range g.snapshot() {
		go func(name string, v View) {
			if err := v.Refresh(ctx); err != nil {
				g.logger.Error("view refresh failed",
					slog.String("view", name),
					slog.String("error", err.Error()))
			}
		}(name, v)
	}
}

// RefreshAllWait refreshes every view concurrently and waits for all of
// them. Used for the initial scan before the server starts answering.
func (g *Group) RefreshAllWait(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for name, v := range g.snapshot() {
		name, v := name, v
		eg.Go(func() error {
			if err := v.Refresh(egCtx); err != nil {
				return fmt.Errorf("refresh %s: %w", name, err)
			}
			return nil
		})
	}
	return eg.Wait()
}
