// Package cards synchronises the on-disk character-card store with the
// mention map: creating cards from a template, splicing the auto-managed
// references section, soft-deleting unreferenced characters by filename
// prefix, and handling user-initiated renames and category changes.
package cards

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/calloway/scribe/internal/models"
)

// InactivePrefix marks a card whose character is currently unreferenced.
// Soft delete renames the file to this form; it is never removed.
const InactivePrefix = "_"

// ReferencesHeading is the auto-managed section of every card.
const ReferencesHeading = "## Story References"

// maxListedReferences is how many occurrences are listed individually;
// the remainder is summarised as a count.
const maxListedReferences = 5

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// SanitizeFileName converts a character name into a safe card file stem:
// unsafe characters removed, spaces replaced with underscores.
func SanitizeFileName(name string) string {
	s := unsafeFileChars.ReplaceAllString(name, "")
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, " ", "_")
}

// CardFileName returns the expected card file name for a character:
// the active form when referenced, the prefixed inactive form otherwise.
func CardFileName(name string, active bool) string {
	file := SanitizeFileName(name) + ".md"
	if !active {
		return InactivePrefix + file
	}
	return file
}

// NameFromFile derives a character name from a card file name, reporting
// whether the card was in the active form. Underscore-substituted names map
// back to their display form with embedded spaces.
func NameFromFile(file string) (name string, active bool) {
	stem := strings.TrimSuffix(file, ".md")
	active = true
	if strings.HasPrefix(stem, InactivePrefix) {
		stem = strings.TrimPrefix(stem, InactivePrefix)
		active = false
	}
	return strings.ReplaceAll(stem, "_", " "), active
}

// ReferencesBody renders the auto-managed references list: the first few
// occurrences as file:line entries, the remainder as a count.
func ReferencesBody(mentions []models.Mention) string {
	if len(mentions) == 0 {
		return "*No references found.*"
	}
	var b strings.Builder
	n := len(mentions)
	listed := n
	if listed > maxListedReferences {
		listed = maxListedReferences
	}
	for i := 0; i < listed; i++ {
		fmt.Fprintf(&b, "- %s:%d\n", mentions[i].FileName, mentions[i].Line)
	}
	if rest := n - listed; rest > 0 {
		fmt.Fprintf(&b, "- …and %d more\n", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Footer renders the generated metadata footer line.
func Footer(count, files int) string {
	return fmt.Sprintf("*Generated by Scribe — %d mentions across %d files.*", count, files)
}

// Template renders a fresh card for a newly referenced character.
func Template(name string, rec *models.CharacterRecord) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "name: %s\n", name)
	b.WriteString("category: \n")
	b.WriteString("status: active\n")
	b.WriteString("tags: []\n")
	b.WriteString("aliases: []\n")
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", name)
	for _, h := range []string{
		"Role in Story",
		"Goal",
		"Physical Description",
		"Personality",
		"Background",
		"Relationships",
		"Character Arc",
	} {
		fmt.Fprintf(&b, "## %s\n\n\n", h)
	}
	b.WriteString(ReferencesHeading + "\n\n")
	b.WriteString(ReferencesBody(rec.Mentions))
	b.WriteString("\n\n## Notes\n\n\n---\n")
	b.WriteString(Footer(rec.Count, rec.FileCount()))
	b.WriteString("\n")
	return b.String()
}
