// Package frontmatter implements the minimal front-matter reader used for
// character cards and content files.
//
// This is deliberately not a YAML engine: it recognises a leading "---"
// delimiter line, plain "key: value" lines up to the closing delimiter, and
// a narrow bracketed-array syntax for list-valued keys. Anything it does not
// understand is skipped, never an error.
package frontmatter

import (
	"strings"

	"github.com/calloway/scribe/internal/models"
)

// Delimiter is the fence line opening and closing a front-matter block.
const Delimiter = "---"

// Block is a parsed front-matter block.
type Block struct {
	fields map[string]string
	order  []string

	// BodyLine is the 0-based index of the first line after the closing
	// delimiter. Zero when the document has no front-matter block.
	BodyLine int
}

// Parse reads a leading front-matter block from content. It never fails:
// a missing or unterminated block yields an empty Block with BodyLine 0.
func Parse(content string) *Block {
	b := &Block{fields: map[string]string{}}

	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return b
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			b.BodyLine = i + 1
			return b
		}
		key, value, ok := strings.Cut(lines[i], ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, dup := b.fields[key]; !dup {
			b.order = append(b.order, key)
		}
		b.fields[key] = strings.TrimSpace(value)
	}

	// No closing delimiter: the whole document is body.
	return &Block{fields: map[string]string{}}
}

// Has reports whether key is present in the block.
func (b *Block) Has(key string) bool {
	_, ok := b.fields[key]
	return ok
}

// Get returns the raw value for key, or "" when absent.
func (b *Block) Get(key string) string {
	return b.fields[key]
}

// Keys returns the field names in file order.
func (b *Block) Keys() []string {
	return append([]string(nil), b.order...)
}

// List parses the bracketed-array syntax for key: [a, b, "c"].
// It returns (nil, false) when the key is absent or the syntax is malformed
// (no closing bracket), and a non-nil empty slice for "[]".
func (b *Block) List(key string) ([]string, bool) {
	raw, ok := b.fields[key]
	if !ok {
		return nil, false
	}
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return nil, false
	}
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	out := []string{}
	if inner == "" {
		return out, true
	}
	for _, part := range strings.Split(inner, ",") {
		item := strings.TrimSpace(part)
		item = strings.Trim(item, `"'`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out, true
}

// StripBody returns content without its leading front-matter block.
func StripBody(content string) string {
	b := Parse(content)
	if b.BodyLine == 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	if b.BodyLine >= len(lines) {
		return ""
	}
	return strings.Join(lines[b.BodyLine:], "\n")
}

var validImportance = map[string]struct{}{
	models.ImportanceMajor:      {},
	models.ImportanceMinor:      {},
	models.ImportanceSupporting: {},
}

var validStatus = map[string]struct{}{
	models.StatusActive:   {},
	models.StatusInactive: {},
	models.StatusDeceased: {},
}

// CardMeta builds validated card metadata from a block. Enum-valued keys
// with values outside the allowed set are dropped, not errors.
func (b *Block) CardMeta() *models.CardMetadata {
	meta := &models.CardMetadata{
		Name:     b.Get("name"),
		Category: b.Get("category"),
		Role:     b.Get("role"),
		Faction:  b.Get("faction"),
		Location: b.Get("location"),
	}
	if imp := strings.ToLower(b.Get("importance")); imp != "" {
		if _, ok := validImportance[imp]; ok {
			meta.Importance = imp
		}
	}
	if st := strings.ToLower(b.Get("status")); st != "" {
		if _, ok := validStatus[st]; ok {
			meta.Status = st
		}
	}
	if tags, ok := b.List("tags"); ok {
		meta.Tags = tags
	}
	if aliases, ok := b.List("aliases"); ok {
		meta.Aliases = aliases
	}
	return meta
}

// SetField rewrites the value of key inside content's front-matter block and
// returns the new document. When the key is absent it is appended to the
// block; when no block exists a minimal one is prepended.
func SetField(content, key, value string) string {
	lines := strings.Split(content, "\n")

	if len(lines) > 0 && strings.TrimSpace(lines[0]) == Delimiter {
		for i := 1; i < len(lines); i++ {
			trimmed := strings.TrimSpace(lines[i])
			if trimmed == Delimiter {
				// Key missing: insert before the closing delimiter.
				out := append([]string{}, lines[:i]...)
				out = append(out, key+": "+value)
				out = append(out, lines[i:]...)
				return strings.Join(out, "\n")
			}
			k, _, ok := strings.Cut(lines[i], ":")
			if ok && strings.TrimSpace(k) == key {
				lines[i] = key + ": " + value
				return strings.Join(lines, "\n")
			}
		}
	}

	// No (closed) block at all: prepend a minimal one.
	return Delimiter + "\n" + key + ": " + value + "\n" + Delimiter + "\n" + content
}
