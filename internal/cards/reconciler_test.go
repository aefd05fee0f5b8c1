package cards

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calloway/scribe/internal/models"
	"github.com/calloway/scribe/internal/storage"
)

func testReconciler(t *testing.T) (string, storage.Provider, *Reconciler) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "manuscript"), 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(dir, "characters")
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return dir, store, New(store, "manuscript", "characters", logger, nil)
}

func charMap(recs ...*models.CharacterRecord) map[string]*models.CharacterRecord {
	out := make(map[string]*models.CharacterRecord)
	for _, r := range recs {
		out[r.Name] = r
	}
	return out
}

func TestReconcileCreatesCard(t *testing.T) {
	dir, _, rec := testReconciler(t)

	elena := record("Elena", mention("chapter-01.md", 3))
	if err := rec.Reconcile(charMap(elena)); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "characters", "Elena.md"))
	if err != nil {
		t.Fatalf("card not created: %v", err)
	}
	if !strings.Contains(string(data), "# Elena") {
		t.Errorf("card content: %q", data)
	}
	if elena.CardPath == "" || elena.Meta == nil {
		t.Errorf("record not populated: path=%q meta=%v", elena.CardPath, elena.Meta)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	dir, _, rec := testReconciler(t)
	elena := record("Elena", mention("chapter-01.md", 3))

	if err := rec.Reconcile(charMap(elena)); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	first, _ := os.ReadFile(filepath.Join(dir, "characters", "Elena.md"))

	elena2 := record("Elena", mention("chapter-01.md", 3))
	if err := rec.Reconcile(charMap(elena2)); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	second, _ := os.ReadFile(filepath.Join(dir, "characters", "Elena.md"))

	if string(first) != string(second) {
		t.Errorf("reconcile not idempotent:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
}

func TestReconcilePreservesAuthorSections(t *testing.T) {
	dir, store, rec := testReconciler(t)
	elena := record("Elena", mention("chapter-01.md", 3))
	if err := rec.Reconcile(charMap(elena)); err != nil {
		t.Fatal(err)
	}

	cardPath := filepath.Join("characters", "Elena.md")
	data, _ := store.Read(cardPath)
	edited := strings.Replace(string(data), "## Goal\n\n", "## Goal\n\nFind the locket.\n", 1)
	if err := store.Write(cardPath, []byte(edited)); err != nil {
		t.Fatal(err)
	}

	elena2 := record("Elena", mention("chapter-01.md", 3), mention("chapter-02.md", 8))
	if err := rec.Reconcile(charMap(elena2)); err != nil {
		t.Fatal(err)
	}

	final, _ := os.ReadFile(filepath.Join(dir, "characters", "Elena.md"))
	if !strings.Contains(string(final), "Find the locket.") {
		t.Error("author edit lost across reconcile")
	}
	if !strings.Contains(string(final), "- chapter-02.md:8") {
		t.Error("references not refreshed")
	}
}

func TestReconcileSoftDeleteAndRevive(t *testing.T) {
	dir, _, rec := testReconciler(t)
	elena := record("Elena", mention("chapter-01.md", 3))
	if err := rec.Reconcile(charMap(elena)); err != nil {
		t.Fatal(err)
	}

	// Character disappears: card moves to the inactive form, never deleted.
	if err := rec.Reconcile(charMap()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "characters", "_Elena.md")); err != nil {
		t.Fatalf("inactive card missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "characters", "Elena.md")); err == nil {
		t.Fatal("active card should be gone")
	}

	// Character returns: card moves back to the active form.
	elena2 := record("Elena", mention("chapter-03.md", 1))
	if err := rec.Reconcile(charMap(elena2)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "characters", "Elena.md")); err != nil {
		t.Fatalf("revived card missing: %v", err)
	}
}

func TestReconcileLoadMetadata(t *testing.T) {
	_, _, rec := testReconciler(t)
	elena := record("Elena", mention("chapter-01.md", 3))
	smith := record("John Smith", mention("chapter-01.md", 9))
	if err := rec.Reconcile(charMap(elena, smith)); err != nil {
		t.Fatal(err)
	}

	metas := rec.LoadMetadata()
	info, ok := metas["John Smith"]
	if !ok || !info.Active {
		t.Fatalf("John Smith info = %+v", info)
	}
	if info.Meta == nil || info.Meta.Status != "active" {
		t.Errorf("meta = %+v", info.Meta)
	}
	// The raw stem keys the same card, so underscored canonical names
	// resolve too.
	if metas["John_Smith"] != info {
		t.Error("stem key should reach the same card info")
	}
	if _, ok := metas["Elena"]; !ok {
		t.Error("Elena card missing")
	}
}

func TestReconcileUnderscoreNameStable(t *testing.T) {
	dir, _, rec := testReconciler(t)
	droid := record("R2_D2", mention("chapter-01.md", 3))
	if err := rec.Reconcile(charMap(droid)); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(filepath.Join(dir, "characters", "R2_D2.md"))
	if err != nil {
		t.Fatalf("card not created: %v", err)
	}

	// The file stem derives back as "R2 D2"; a second refresh must neither
	// soft-delete the card nor recreate it from the template.
	droid2 := record("R2_D2", mention("chapter-01.md", 3))
	if err := rec.Reconcile(charMap(droid2)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "characters", "_R2_D2.md")); err == nil {
		t.Fatal("card soft-deleted while still referenced")
	}
	second, err := os.ReadFile(filepath.Join(dir, "characters", "R2_D2.md"))
	if err != nil {
		t.Fatalf("active card missing after second reconcile: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("card churned across refreshes:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
}

func TestReconcileZeroCountSkipped(t *testing.T) {
	dir, _, rec := testReconciler(t)
	ghost := &models.CharacterRecord{Name: "Ghost"}
	if err := rec.Reconcile(charMap(ghost)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "characters", "Ghost.md")); err == nil {
		t.Error("zero-mention character should not get a card")
	}
}
