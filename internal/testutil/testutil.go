// Package testutil provides shared test helpers for setting up projects and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calloway/scribe/internal/stats"
	"github.com/calloway/scribe/internal/storage"
)

// ContentDir and CardsDir are the project subdirectories used by test projects.
const (
	ContentDir = "manuscript"
	CardsDir   = "characters"
)

// TestDB creates a temporary SQLite statistics database that is automatically
// cleaned up.
func TestDB(t *testing.T) *stats.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "scribe-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := stats.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestProject creates a temporary project directory with a content dir and a
// storage.Provider that excludes the card store from scans.
func TestProject(t *testing.T) (string, storage.Provider) {
	t.Helper()
	projectDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(projectDir, ContentDir), 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(projectDir, CardsDir)
	if err != nil {
		t.Fatal(err)
	}
	return projectDir, store
}

// WriteContent writes a content file under the project's content dir and
// returns its project-relative path.
func WriteContent(t *testing.T, projectDir, name, content string) string {
	t.Helper()
	rel := filepath.Join(ContentDir, name)
	abs := filepath.Join(projectDir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return rel
}
