package models

import "time"

// FileMeta is a lightweight description of one content file on disk.
type FileMeta struct {
	Path      string    `json:"path"` // relative to the project root
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
