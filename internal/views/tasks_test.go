package views

import (
	"context"
	"testing"

	"github.com/calloway/scribe/internal/testutil"
)

func TestTasksGroupedPinnedFirst(t *testing.T) {
	dir, store := testutil.TestProject(t)
	v := NewTasks(store, testutil.ContentDir, discardLogger(), nil)
	testutil.WriteContent(t, dir, "a.md",
		"{WORLD_BUILDING: name the river} {TODO: cut this} {ANACHRONISM: check trains} {FIXME: tense shift}\n")

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	groups := v.Grouped()
	want := []string{"TODO", "FIXME", "ANACHRONISM", "WORLD_BUILDING"}
	if len(groups) != len(want) {
		t.Fatalf("groups = %d, want %d", len(groups), len(want))
	}
	for i, w := range want {
		if groups[i].Type != w {
			t.Errorf("group[%d] = %q, want %q", i, groups[i].Type, w)
		}
	}
}

func TestTasksFilter(t *testing.T) {
	dir, store := testutil.TestProject(t)
	v := NewTasks(store, testutil.ContentDir, discardLogger(), nil)
	testutil.WriteContent(t, dir, "a.md", "{TODO: tighten pacing} {TODO: cut the dream}\n")

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	v.SetFilter("dream")
	if got := v.All(); len(got) != 1 {
		t.Errorf("filtered = %+v", got)
	}
	v.ClearFilter()
	if got := v.All(); len(got) != 2 {
		t.Errorf("cleared = %+v", got)
	}
}
