package cards

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/calloway/scribe/internal/frontmatter"
	"github.com/calloway/scribe/internal/models"
	"github.com/calloway/scribe/internal/storage"
)

// Notifier surfaces card failures to the end user (not just the log).
type Notifier func(msg string)

// Reconciler keeps the card store in step with the mention map.
type Reconciler struct {
	store      storage.Provider
	contentDir string // content root, relative to the project root
	dir        string // card store, relative to the project root
	logger     *slog.Logger
	notify     Notifier
}

// New creates a Reconciler. notify may be nil.
func New(store storage.Provider, contentDir, cardsDir string, logger *slog.Logger, notify Notifier) *Reconciler {
	if notify == nil {
		notify = func(string) {}
	}
	return &Reconciler{
		store:      store,
		contentDir: contentDir,
		dir:        cardsDir,
		logger:     logger,
		notify:     notify,
	}
}

// Dir returns the card store directory relative to the project root.
func (r *Reconciler) Dir() string {
	return r.dir
}

// CardInfo describes one existing card file.
type CardInfo struct {
	File   string // file name inside the card store
	Active bool
	Meta   *models.CardMetadata
}

// LoadMetadata reads every existing card's front matter, keyed by derived
// character name. A card that cannot be read contributes no metadata for
// this pass; it is logged and skipped.
func (r *Reconciler) LoadMetadata() map[string]*CardInfo {
	out := make(map[string]*CardInfo)
	files, err := r.store.ListDir(r.dir)
	if err != nil {
		r.logger.Warn("cards: list failed", slog.String("dir", r.dir), slog.String("error", err.Error()))
		return out
	}
	for _, file := range files {
		name, active := NameFromFile(file)
		if name == "" {
			continue
		}
		info := &CardInfo{File: file, Active: active}
		data, err := r.store.Read(filepath.Join(r.dir, file))
		if err != nil {
			r.logger.Warn("cards: read failed", slog.String("file", file), slog.String("error", err.Error()))
		} else {
			info.Meta = frontmatter.Parse(string(data)).CardMeta()
		}
		out[name] = info
		// A canonical name containing underscores derives back with spaces,
		// so key the raw stem too; @R2_D2 must still find R2_D2.md.
		stem := strings.TrimSuffix(strings.TrimPrefix(file, InactivePrefix), ".md")
		if stem != name {
			out[stem] = info
		}
	}
	return out
}

// Reconcile synchronises the card store with the current character map,
// invoked once per refresh after the mention scan completes. Failures are
// isolated per character: one bad card never blocks the rest.
func (r *Reconciler) Reconcile(chars map[string]*models.CharacterRecord) error {
	if err := r.store.EnsureDir(r.dir); err != nil {
		return fmt.Errorf("cards: ensure dir: %w", err)
	}

	existing := r.LoadMetadata()

	names := make([]string, 0, len(chars))
	for name := range chars {
		names = append(names, name)
	}
	sort.Strings(names)

	claimed := make(map[string]struct{}, len(names))
	for _, name := range names {
		rec := chars[name]
		if rec.Count == 0 {
			continue
		}
		claimed[CardFileName(name, true)] = struct{}{}
		if err := r.reconcileOne(name, rec, existing[name]); err != nil {
			r.logger.Error("cards: reconcile failed",
				slog.String("character", name),
				slog.String("error", err.Error()))
			r.notify(fmt.Sprintf("character card update failed for %q: %v", name, err))
		}
	}

	// Soft-delete cards whose character is no longer referenced. A card can
	// appear under both its display name and its raw stem; dedupe by file
	// and never touch a file a referenced character claimed above.
	moved := make(map[string]struct{})
	for name, info := range existing {
		if rec, ok := chars[name]; ok && rec.Count > 0 {
			continue
		}
		if !info.Active {
			continue
		}
		if _, ok := claimed[info.File]; ok {
			continue
		}
		if _, ok := moved[info.File]; ok {
			continue
		}
		moved[info.File] = struct{}{}
		old := filepath.Join(r.dir, info.File)
		inactive := filepath.Join(r.dir, InactivePrefix+info.File)
		if err := r.store.Move(old, inactive); err != nil {
			r.logger.Error("cards: soft delete failed",
				slog.String("character", name),
				slog.String("error", err.Error()))
			r.notify(fmt.Sprintf("could not mark card for %q unreferenced: %v", name, err))
		} else {
			r.logger.Debug("cards: soft deleted", slog.String("character", name))
		}
	}

	return nil
}

// reconcileOne renames a card to its expected file name, creates it from the
// template when missing, or splices the references section when present. It
// also populates the record's card path and metadata.
func (r *Reconciler) reconcileOne(name string, rec *models.CharacterRecord, info *CardInfo) error {
	expected := CardFileName(name, true)
	expectedPath := filepath.Join(r.dir, expected)

	if info != nil && info.File != expected {
		if err := r.store.Move(filepath.Join(r.dir, info.File), expectedPath); err != nil {
			return fmt.Errorf("rename card: %w", err)
		}
		r.logger.Debug("cards: renamed",
			slog.String("character", name),
			slog.String("from", info.File),
			slog.String("to", expected))
	}

	data, err := r.store.Read(expectedPath)
	if err != nil {
		// No card yet: write a fresh template.
		content := Template(name, rec)
		if err := r.store.Write(expectedPath, []byte(content)); err != nil {
			return fmt.Errorf("create card: %w", err)
		}
		rec.CardPath = expectedPath
		rec.Meta = frontmatter.Parse(content).CardMeta()
		r.logger.Debug("cards: created", slog.String("character", name))
		return nil
	}

	updated := UpdateReferences(string(data),
		ReferencesBody(rec.Mentions),
		Footer(rec.Count, rec.FileCount()))
	if !bytes.Equal(data, []byte(updated)) {
		if err := r.store.Write(expectedPath, []byte(updated)); err != nil {
			return fmt.Errorf("update card: %w", err)
		}
	}

	rec.CardPath = expectedPath
	rec.Meta = frontmatter.Parse(updated).CardMeta()
	return nil
}
