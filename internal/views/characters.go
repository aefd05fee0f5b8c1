package views

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/calloway/scribe/internal/apperr"
	"github.com/calloway/scribe/internal/cards"
	"github.com/calloway/scribe/internal/models"
	"github.com/calloway/scribe/internal/scan"
	"github.com/calloway/scribe/internal/storage"
)

// Characters owns the character view: the mention map derived from the
// content files plus the reconciled card store.
type Characters struct {
	store      storage.Provider
	cards      *cards.Reconciler
	contentDir string
	logger     *slog.Logger
	onChange   func()

	mu     sync.RWMutex
	byName map[string]*models.CharacterRecord
	filter string
}

// NewCharacters creates an empty character view. onChange, when non-nil, is
// fired after every successful refresh.
func NewCharacters(store storage.Provider, rec *cards.Reconciler, contentDir string, logger *slog.Logger, onChange func()) *Characters {
	return &Characters{
		store:      store,
		cards:      rec,
		contentDir: contentDir,
		logger:     logger,
		onChange:   onChange,
		byName:     map[string]*models.CharacterRecord{},
	}
}

// Refresh rescans the whole content set, folds mentions into a fresh
// character map (resolving aliases against the existing cards), reconciles
// the card store, and swaps the map in atomically. A failing file is logged
// and skipped; it never aborts the corpus scan.
func (v *Characters) Refresh(ctx context.Context) error {
	metas, err := v.store.List(v.contentDir)
	if err != nil {
		return err
	}

	aliases := v.aliasIndex()
	fresh := make(map[string]*models.CharacterRecord)

	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := v.store.Read(m.Path)
		if err != nil {
			v.logger.Warn("characters: read failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		fileName := filepath.Base(m.Path)
		for _, raw := range scan.Mentions(string(data)) {
			name := v.resolveAlias(raw.Name, aliases)
			rec, ok := fresh[name]
			if !ok {
				rec = &models.CharacterRecord{Name: name}
				fresh[name] = rec
			}
			rec.AddMention(models.Mention{
				Path:     m.Path,
				FileName: fileName,
				Line:     raw.Line,
				Column:   raw.Column,
			})
		}
	}

	if err := v.cards.Reconcile(fresh); err != nil {
		v.logger.Error("characters: reconcile failed", slog.String("error", err.Error()))
	}

	v.mu.Lock()
	v.byName = fresh
	v.mu.Unlock()

	if v.onChange != nil {
		v.onChange()
	}
	return nil
}

// aliasIndex maps each known alias to the canonical names that declare it.
// The metadata map keys every card under its display name and its raw file
// stem; only the display-name entry counts, so one card never registers an
// alias twice.
func (v *Characters) aliasIndex() map[string][]string {
	idx := make(map[string][]string)
	for name, info := range v.cards.LoadMetadata() {
		if info.Meta == nil {
			continue
		}
		if display, _ := cards.NameFromFile(info.File); display != name {
			continue
		}
		for _, alias := range info.Meta.Aliases {
			idx[alias] = append(idx[alias], name)
		}
	}
	return idx
}

// resolveAlias folds a mentioned name into the canonical record when exactly
// one character declares it as an alias. Ambiguous aliases are logged and
// treated as no-match.
func (v *Characters) resolveAlias(name string, aliases map[string][]string) string {
	owners := aliases[name]
	switch len(owners) {
	case 0:
		return name
	case 1:
		return owners[0]
	default:
		v.logger.Warn("characters: ambiguous alias",
			slog.String("alias", name),
			slog.Int("candidates", len(owners)))
		return name
	}
}

// All returns the current records sorted by name, honouring the view filter.
func (v *Characters) All() []*models.CharacterRecord {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]*models.CharacterRecord, 0, len(v.byName))
	for _, rec := range v.byName {
		if v.filter != "" && !matchCharacter(rec, v.filter) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns one record by canonical name.
func (v *Characters) Get(name string) (*models.CharacterRecord, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rec, ok := v.byName[name]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return rec, nil
}

// Names returns the current canonical name set.
func (v *Characters) Names() map[string]struct{} {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]struct{}, len(v.byName))
	for name := range v.byName {
		out[name] = struct{}{}
	}
	return out
}

// Rename performs the user-initiated character rename across the corpus and
// the card store. The caller triggers a refresh afterwards; partial failures
// are reported in the result, not rolled back.
func (v *Characters) Rename(oldName, newName string) (*cards.RenameResult, error) {
	if _, err := v.Get(oldName); err != nil {
		return nil, err
	}
	return v.cards.RenameCharacter(oldName, newName, v.Names())
}

// SetCategory rewrites the card's category field and the in-memory metadata.
func (v *Characters) SetCategory(name, category string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	rec, ok := v.byName[name]
	if !ok {
		return apperr.ErrNotFound
	}
	if err := v.cards.SetCategory(name, category); err != nil {
		return err
	}
	if rec.Meta == nil {
		rec.Meta = &models.CardMetadata{}
	}
	rec.Meta.Category = category
	return nil
}

// SetFilter sets the view's case-insensitive substring filter.
func (v *Characters) SetFilter(q string) {
	v.mu.Lock()
	v.filter = strings.ToLower(q)
	v.mu.Unlock()
}

// ClearFilter removes the view filter.
func (v *Characters) ClearFilter() {
	v.SetFilter("")
}

func matchCharacter(rec *models.CharacterRecord, filter string) bool {
	if strings.Contains(strings.ToLower(rec.Name), filter) {
		return true
	}
	if rec.Meta != nil && strings.Contains(strings.ToLower(rec.Meta.Category), filter) {
		return true
	}
	return false
}
