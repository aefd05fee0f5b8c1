package cards

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/calloway/scribe/internal/apperr"
	"github.com/calloway/scribe/internal/frontmatter"
)

var bareNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Token renders the mention token for a name: bracketed when the name
// contains whitespace, bare otherwise.
func Token(name string) string {
	if strings.ContainsAny(name, " \t") {
		return "@[" + name + "]"
	}
	return "@" + name
}

// tokenPattern matches every mention of name: the bracketed form always,
// the bare form only when the name is a single bare word (with a word
// boundary, so @Elena never matches inside @Elenalike).
func tokenPattern(name string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(name)
	if bareNameRe.MatchString(name) {
		return regexp.MustCompile(`@\[` + quoted + `\]|@` + quoted + `\b`)
	}
	return regexp.MustCompile(`@\[` + quoted + `\]`)
}

// RenameResult summarises a character rename for the completion message.
// Substitutions are not rolled back on partial failure; the user is told
// what happened and verifies manually.
type RenameResult struct {
	FilesChanged int      `json:"files_changed"`
	FilesFailed  []string `json:"files_failed,omitempty"`
	CardRenamed  bool     `json:"card_renamed"`
}

// ValidateName rejects names that cannot become mention tokens or card
// files, before any file is touched.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: empty name", apperr.ErrInvalidName)
	}
	if unsafeFileChars.MatchString(trimmed) {
		return fmt.Errorf("%w: %q contains reserved characters", apperr.ErrInvalidName, name)
	}
	if strings.ContainsAny(trimmed, "[]@\n") {
		return fmt.Errorf("%w: %q contains token delimiters", apperr.ErrInvalidName, name)
	}
	return nil
}

// RenameCharacter rewrites every mention token of oldName across the content
// files to the token form of newName, rewrites the character's own card, and
// renames the card file. known is the current set of character names, used
// for duplicate rejection. Per-file substitution failures are logged and do
// not abort the remaining files.
func (r *Reconciler) RenameCharacter(oldName, newName string, known map[string]struct{}) (*RenameResult, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}
	newName = strings.TrimSpace(newName)
	if newName == oldName {
		return nil, fmt.Errorf("%w: name unchanged", apperr.ErrInvalidName)
	}
	if _, dup := known[newName]; dup {
		return nil, fmt.Errorf("%w: character %q", apperr.ErrAlreadyExists, newName)
	}

	pattern := tokenPattern(oldName)
	replacement := Token(newName)
	res := &RenameResult{}

	metas, err := r.store.List(r.contentDir)
	if err != nil {
		return nil, fmt.Errorf("cards: list content: %w", err)
	}
	for _, m := range metas {
		data, err := r.store.Read(m.Path)
		if err != nil {
			r.logger.Warn("rename: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			res.FilesFailed = append(res.FilesFailed, m.Path)
			continue
		}
		updated := pattern.ReplaceAllLiteralString(string(data), replacement)
		if updated == string(data) {
			continue
		}
		if err := r.store.Write(m.Path, []byte(updated)); err != nil {
			r.logger.Warn("rename: write failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			res.FilesFailed = append(res.FilesFailed, m.Path)
			continue
		}
		res.FilesChanged++
	}

	if err := r.renameCard(oldName, newName, pattern, replacement); err != nil {
		r.logger.Error("rename: card rewrite failed",
			slog.String("character", oldName),
			slog.String("error", err.Error()))
		r.notify(fmt.Sprintf("card rename for %q failed: %v", oldName, err))
	} else {
		res.CardRenamed = true
	}

	r.logger.Info("rename: completed",
		slog.String("from", oldName),
		slog.String("to", newName),
		slog.Int("files_changed", res.FilesChanged),
		slog.Int("files_failed", len(res.FilesFailed)))
	return res, nil
}

// renameCard rewrites the card's own name field, main heading, and
// self-referential mentions, then renames the card file.
func (r *Reconciler) renameCard(oldName, newName string, pattern *regexp.Regexp, replacement string) error {
	file, ok := r.findCard(oldName)
	if !ok {
		return nil // no card yet; the next refresh will create one
	}
	oldPath := filepath.Join(r.dir, file)

	data, err := r.store.Read(oldPath)
	if err != nil {
		return fmt.Errorf("read card: %w", err)
	}

	content := string(data)
	content = frontmatter.SetField(content, "name", newName)
	headingRe := regexp.MustCompile(`(?m)^# ` + regexp.QuoteMeta(oldName) + `[ \t]*$`)
	content = headingRe.ReplaceAllString(content, "# "+newName)
	content = pattern.ReplaceAllLiteralString(content, replacement)

	if err := r.store.Write(oldPath, []byte(content)); err != nil {
		return fmt.Errorf("write card: %w", err)
	}

	_, active := NameFromFile(file)
	newPath := filepath.Join(r.dir, CardFileName(newName, active))
	if err := r.store.Move(oldPath, newPath); err != nil {
		return fmt.Errorf("rename card file: %w", err)
	}
	return nil
}

// SetCategory rewrites only the front-matter category field of the card,
// adding a minimal front-matter block when none exists. Occurrence text is
// never touched.
func (r *Reconciler) SetCategory(name, category string) error {
	file, ok := r.findCard(name)
	if !ok {
		return fmt.Errorf("%w: no card for %q", apperr.ErrNotFound, name)
	}
	path := filepath.Join(r.dir, file)

	data, err := r.store.Read(path)
	if err != nil {
		return fmt.Errorf("cards: read card: %w", err)
	}
	updated := frontmatter.SetField(string(data), "category", category)
	if err := r.store.Write(path, []byte(updated)); err != nil {
		return fmt.Errorf("cards: write card: %w", err)
	}
	r.logger.Debug("cards: category set",
		slog.String("character", name),
		slog.String("category", category))
	return nil
}

// findCard locates the card file for name, active form first.
func (r *Reconciler) findCard(name string) (string, bool) {
	files, err := r.store.ListDir(r.dir)
	if err != nil {
		return "", false
	}
	active := CardFileName(name, true)
	inactive := CardFileName(name, false)
	var found string
	for _, f := range files {
		if f == active {
			return f, true
		}
		if f == inactive {
			found = f
		}
	}
	return found, found != ""
}
