package cards

import (
	"strings"
	"testing"

	"github.com/calloway/scribe/internal/frontmatter"
	"github.com/calloway/scribe/internal/models"
)

func record(name string, mentions ...models.Mention) *models.CharacterRecord {
	rec := &models.CharacterRecord{Name: name}
	for _, m := range mentions {
		rec.AddMention(m)
	}
	return rec
}

func mention(file string, line int) models.Mention {
	return models.Mention{Path: "manuscript/" + file, FileName: file, Line: line}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Elena", "Elena"},
		{"John Smith", "John_Smith"},
		{`Bad/Name:Here?`, "BadNameHere"},
		{"  padded  ", "padded"},
	}
	for _, c := range cases {
		if got := SanitizeFileName(c.in); got != c.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCardFileNameRoundTrip(t *testing.T) {
	file := CardFileName("John Smith", true)
	if file != "John_Smith.md" {
		t.Errorf("file = %q", file)
	}
	name, active := NameFromFile(file)
	if name != "John Smith" || !active {
		t.Errorf("NameFromFile = %q, %v", name, active)
	}

	inactive := CardFileName("John Smith", false)
	if inactive != "_John_Smith.md" {
		t.Errorf("inactive file = %q", inactive)
	}
	name, active = NameFromFile(inactive)
	if name != "John Smith" || active {
		t.Errorf("NameFromFile inactive = %q, %v", name, active)
	}
}

func TestReferencesBodyTruncation(t *testing.T) {
	rec := record("Elena",
		mention("a.md", 1), mention("a.md", 5), mention("b.md", 2),
		mention("c.md", 9), mention("c.md", 14), mention("d.md", 3),
		mention("d.md", 8))
	body := ReferencesBody(rec.Mentions)
	if !strings.Contains(body, "- a.md:1") {
		t.Errorf("first reference missing: %q", body)
	}
	if !strings.Contains(body, "…and 2 more") {
		t.Errorf("overflow summary missing: %q", body)
	}
	if strings.Count(body, "\n")+1 != maxListedReferences+1 {
		t.Errorf("body lines = %d", strings.Count(body, "\n")+1)
	}
}

func TestReferencesBodyEmpty(t *testing.T) {
	if got := ReferencesBody(nil); got != "*No references found.*" {
		t.Errorf("empty body = %q", got)
	}
}

func TestTemplateStructure(t *testing.T) {
	rec := record("Elena", mention("chapter-01.md", 12))
	doc := Template("Elena", rec)

	meta := frontmatter.Parse(doc).CardMeta()
	if meta.Name != "Elena" || meta.Status != "active" {
		t.Errorf("meta = %+v", meta)
	}
	if meta.Tags == nil || meta.Aliases == nil {
		t.Error("template lists should parse as empty, not absent")
	}

	for _, want := range []string{
		"# Elena",
		"## Role in Story",
		"## Character Arc",
		ReferencesHeading,
		"- chapter-01.md:12",
		"## Notes",
		"*Generated by Scribe — 1 mentions across 1 files.*",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("template missing %q", want)
		}
	}
}

func TestUpdateReferencesInPlace(t *testing.T) {
	rec := record("Elena", mention("a.md", 1))
	doc := Template("Elena", rec)

	// Author edits a free section; references then change.
	doc = strings.Replace(doc, "## Personality\n\n", "## Personality\n\nStubborn.\n", 1)
	rec2 := record("Elena", mention("a.md", 1), mention("b.md", 7))
	updated := UpdateReferences(doc, ReferencesBody(rec2.Mentions), Footer(rec2.Count, rec2.FileCount()))

	if !strings.Contains(updated, "Stubborn.") {
		t.Error("author content lost")
	}
	if !strings.Contains(updated, "- b.md:7") {
		t.Errorf("new reference missing:\n%s", updated)
	}
	if !strings.Contains(updated, "2 mentions across 2 files") {
		t.Errorf("footer not refreshed:\n%s", updated)
	}
	if strings.Count(updated, ReferencesHeading) != 1 {
		t.Error("references section duplicated")
	}
}

func TestUpdateReferencesIdempotent(t *testing.T) {
	rec := record("Elena", mention("a.md", 1))
	doc := Template("Elena", rec)
	body := ReferencesBody(rec.Mentions)
	footer := Footer(rec.Count, rec.FileCount())

	once := UpdateReferences(doc, body, footer)
	twice := UpdateReferences(once, body, footer)
	if once != twice {
		t.Errorf("splice not idempotent:\n--- once ---\n%s\n--- twice ---\n%s", once, twice)
	}
}

func TestUpdateReferencesAppendsWhenMissing(t *testing.T) {
	doc := "---\nname: Elena\n---\n\n# Elena\n\nFree-form card with no generated parts.\n"
	updated := UpdateReferences(doc, "- a.md:1", Footer(1, 1))
	if !strings.Contains(updated, ReferencesHeading) {
		t.Errorf("section not appended:\n%s", updated)
	}
	if !strings.Contains(updated, "1 mentions across 1 files") {
		t.Errorf("footer not added:\n%s", updated)
	}
	if !strings.Contains(updated, "Free-form card") {
		t.Error("author content lost")
	}
}

func TestUpdateReferencesFrontMatterUntouched(t *testing.T) {
	// The front-matter close fence must never be mistaken for the trailing
	// separator.
	doc := "---\nname: Elena\ncategory: lead\n---\n\n# Elena\n\nBody.\n"
	updated := UpdateReferences(doc, "- a.md:1", Footer(1, 1))
	b := frontmatter.Parse(updated)
	if b.Get("name") != "Elena" || b.Get("category") != "lead" {
		t.Errorf("front matter damaged:\n%s", updated)
	}
}

func TestFooter(t *testing.T) {
	got := Footer(12, 3)
	if got != "*Generated by Scribe — 12 mentions across 3 files.*" {
		t.Errorf("footer = %q", got)
	}
}
