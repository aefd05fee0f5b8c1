// Package models defines the domain types for Scribe.
package models

// Importance levels accepted in card front matter.
const (
	ImportanceMajor      = "major"
	ImportanceMinor      = "minor"
	ImportanceSupporting = "supporting"
)

// Status values accepted in card front matter.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDeceased = "deceased"
)

// Mention is a single occurrence of a character token in a content file.
type Mention struct {
	Path     string `json:"path"`      // relative to the project root
	FileName string `json:"file_name"` // display name (base name)
	Line     int    `json:"line"`      // 1-based
	Column   int    `json:"column"`    // 0-based byte offset within the line
}

// CardMetadata is the validated front-matter block of a character card.
//
// String fields are empty when unset. Tags and Aliases distinguish an
// absent key (nil) from an explicitly empty list (non-nil, length 0).
type CardMetadata struct {
	Name       string   `json:"name,omitempty"`
	Category   string   `json:"category,omitempty"`
	Role       string   `json:"role,omitempty"`
	Importance string   `json:"importance,omitempty"` // major|minor|supporting
	Faction    string   `json:"faction,omitempty"`
	Location   string   `json:"location,omitempty"`
	Status     string   `json:"status,omitempty"` // active|inactive|deceased
	Tags       []string `json:"tags,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
}

// CharacterRecord aggregates every mention of one character plus the
// metadata read from its card. Records are rebuilt from scratch on every
// refresh; the on-disk cards are the durable store.
type CharacterRecord struct {
	Name     string        `json:"name"` // canonical, case-sensitive key
	Count    int           `json:"count"`
	Mentions []Mention     `json:"mentions"`
	CardPath string        `json:"card_path,omitempty"` // relative card file path, set once reconciled
	Meta     *CardMetadata `json:"meta,omitempty"`
}

// AddMention appends an occurrence and keeps Count in step with the list.
func (c *CharacterRecord) AddMention(m Mention) {
	c.Mentions = append(c.Mentions, m)
	c.Count = len(c.Mentions)
}

// FileCount returns the number of distinct files the character appears in.
func (c *CharacterRecord) FileCount() int {
	seen := make(map[string]struct{}, len(c.Mentions))
	for _, m := range c.Mentions {
		seen[m.Path] = struct{}{}
	}
	return len(seen)
}
