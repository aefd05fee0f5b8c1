// Package storage defines the project file-system abstraction.
package storage

import "github.com/calloway/scribe/internal/models"

// Provider is the interface for project file operations. All paths are
// relative to the project root.
type Provider interface {
	// List returns metadata for every .md file under dir, recursively,
	// skipping any configured excluded directories (the card store).
	List(dir string) ([]models.FileMeta, error)
	// ListDir returns the names of the .md files directly inside dir.
	ListDir(dir string) ([]string, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath. Moving a path onto itself is a no-op.
	Move(oldPath, newPath string) error
	// EnsureDir creates dir (and parents) if absent.
	EnsureDir(dir string) error
}
