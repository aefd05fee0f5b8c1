package models

// ItemKind classifies a structure item.
type ItemKind string

const (
	KindAct     ItemKind = "act"
	KindChapter ItemKind = "chapter"
	KindSection ItemKind = "section"
	KindFolder  ItemKind = "folder"
	KindEvent   ItemKind = "event"
)

// EventDepth is the synthetic depth assigned to event items. It is deeper
// than any heading so an event never closes a heading on the builder stack.
const EventDepth = 7

// StructureItem is one heading or event marker extracted from a content file.
type StructureItem struct {
	Title      string   `json:"title"`
	Depth      int      `json:"depth"` // 1-6 for headings, EventDepth for events
	Kind       ItemKind `json:"kind"`
	Path       string   `json:"path"`      // relative to the content root
	FileName   string   `json:"file_name"` // display name (base name)
	Folder     string   `json:"folder"`    // containing dir relative to content root, "" for root
	Line       int      `json:"line"`      // 1-based
	WordCount  int      `json:"word_count,omitempty"` // headings only, never events
	ChapterNum string   `json:"chapter_num,omitempty"` // dotted, e.g. "5.3.2"
}

// Marker is one categorised story-marker line (#! [Category] text).
type Marker struct {
	Category string `json:"category,omitempty"`
	Text     string `json:"text"`
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Line     int    `json:"line"`
	Chapter  string `json:"chapter,omitempty"` // chapter number of the owning file, if known
}

// Task is one inline task annotation ({TYPE: text}).
type Task struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Line     int    `json:"line"`
}
