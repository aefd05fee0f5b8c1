package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/calloway/scribe/internal/apperr"
	"github.com/calloway/scribe/internal/stats"
	"github.com/calloway/scribe/internal/views"
)

// Handler holds API route handlers.
type Handler struct {
	characters *views.Characters
	structure  *views.Structure
	markers    *views.Markers
	tasks      *views.Tasks
	group      *views.Group
	stats      *stats.DB
}

// NewHandler creates a new Handler.
func NewHandler(characters *views.Characters, structure *views.Structure, markers *views.Markers, tasks *views.Tasks, group *views.Group, db *stats.DB) *Handler {
	return &Handler{
		characters: characters,
		structure:  structure,
		markers:    markers,
		tasks:      tasks,
		group:      group,
		stats:      db,
	}
}

// characterName extracts the character name from the URL. chi decodes the
// param, so names with spaces arrive already unescaped.
func characterName(r *http.Request) string {
	return chi.URLParam(r, "name")
}

// ListCharacters handles GET /api/characters.
//
//	@Summary		List characters sorted by name
//	@Tags			characters
//	@Produce		json
//	@Success		200	{object}	CharacterListResponse
//	@Security		BearerAuth
//	@Router			/characters [get]
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	recs := h.characters.All()
	writeJSON(w, http.StatusOK, CharacterListResponse{
		Characters: recs,
		Total:      len(recs),
	})
}

// GetCharacter handles GET /api/characters/{name}.
//
//	@Summary		Get one character with all its mentions
//	@Tags			characters
//	@Produce		json
//	@Param			name	path		string	true	"Character name"
//	@Success		200		{object}	models.CharacterRecord
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters/{name} [get]
func (h *Handler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	name := characterName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	rec, err := h.characters.Get(name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get character failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RenameCharacter handles POST /api/characters/{name}/rename.
//
//	@Summary		Rename a character across every content file and its card
//	@Tags			characters
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string			true	"Current name"
//	@Param			body	body		RenameRequest	true	"New name"
//	@Success		200		{object}	RenameResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters/{name}/rename [post]
func (h *Handler) RenameCharacter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	name := characterName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.NewName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("new_name is required"))
		return
	}

	res, err := h.characters.Rename(name, req.NewName)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("target name already in use"))
		case errors.Is(err, apperr.ErrInvalidName):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid character name"))
		default:
			slog.Error("rename character failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	// Rewritten files land on disk before the response; the views catch up
	// in the background, detached from the request context.
	h.group.RefreshAll(context.Background())
	writeJSON(w, http.StatusOK, renameResponse(res))
}

// SetCategory handles POST /api/characters/{name}/category.
//
//	@Summary		Set the category on a character's card
//	@Tags			characters
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string			true	"Character name"
//	@Param			body	body		CategoryRequest	true	"Category"
//	@Success		204		"Category updated"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/characters/{name}/category [post]
func (h *Handler) SetCategory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	name := characterName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Category == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("category is required"))
		return
	}
	if err := h.characters.SetCategory(name, req.Category); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("set category failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Outline handles GET /api/outline.
//
//	@Summary		Get the manuscript navigation tree with word totals
//	@Tags			structure
//	@Produce		json
//	@Success		200	{object}	OutlineResponse
//	@Security		BearerAuth
//	@Router			/outline [get]
func (h *Handler) Outline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OutlineResponse{
		Tree:   h.structure.Tree(),
		Totals: h.structure.Totals(),
	})
}

// Markers handles GET /api/markers.
//
//	@Summary		Get story markers grouped by category and chapter
//	@Tags			markers
//	@Produce		json
//	@Success		200	{object}	MarkersResponse
//	@Security		BearerAuth
//	@Router			/markers [get]
func (h *Handler) Markers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MarkersResponse{Groups: h.markers.Grouped()})
}

// Tasks handles GET /api/tasks.
//
//	@Summary		Get task annotations grouped by type
//	@Tags			tasks
//	@Produce		json
//	@Success		200	{object}	TasksResponse
//	@Security		BearerAuth
//	@Router			/tasks [get]
func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TasksResponse{Groups: h.tasks.Grouped()})
}

// Stats handles GET /api/stats.
//
//	@Summary		Get current word totals and the latest recorded snapshot
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Totals: h.structure.Totals()}
	if h.stats != nil {
		latest, err := h.stats.Latest()
		if err != nil {
			slog.Error("stats latest failed", slog.String("error", err.Error()))
		} else {
			resp.Latest = latest
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// StatsHistory handles GET /api/stats/history.
//
//	@Summary		Get recorded word-count snapshots, newest first
//	@Tags			stats
//	@Produce		json
//	@Param			limit	query		int	false	"Max snapshots"
//	@Success		200		{object}	HistoryResponse
//	@Security		BearerAuth
//	@Router			/stats/history [get]
func (h *Handler) StatsHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	snaps, err := h.stats.History(limit)
	if err != nil {
		slog.Error("stats history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Snapshots: snaps})
}

// Refresh handles POST /api/refresh.
//
//	@Summary		Force a full rescan of every view and wait for it
//	@Tags			refresh
//	@Produce		json
//	@Success		200	{object}	RefreshResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.group.RefreshAllWait(r.Context()); err != nil {
		slog.Error("manual refresh failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("refresh failed"))
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Status: "refreshed"})
}

// SetFilter handles PUT /api/filter/{view}.
//
//	@Summary		Set a case-insensitive substring filter on one view
//	@Tags			filter
//	@Accept			json
//	@Param			view	path	string			true	"View name"
//	@Param			body	body	FilterRequest	true	"Filter query"
//	@Success		204		"Filter set"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filter/{view} [put]
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	view, ok := h.group.Get(chi.URLParam(r, "view"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown view"))
		return
	}
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	view.SetFilter(req.Query)
	w.WriteHeader(http.StatusNoContent)
}

// ClearFilter handles DELETE /api/filter/{view}.
//
//	@Summary		Clear the filter on one view
//	@Tags			filter
//	@Param			view	path	string	true	"View name"
//	@Success		204		"Filter cleared"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filter/{view} [delete]
func (h *Handler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	view, ok := h.group.Get(chi.URLParam(r, "view"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("unknown view"))
		return
	}
	view.ClearFilter()
	w.WriteHeader(http.StatusNoContent)
}
