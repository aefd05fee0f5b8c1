package api

import (
	"github.com/calloway/scribe/internal/cards"
	"github.com/calloway/scribe/internal/models"
	"github.com/calloway/scribe/internal/outline"
	"github.com/calloway/scribe/internal/stats"
	"github.com/calloway/scribe/internal/views"
)

// CharacterListResponse is the payload for GET /api/characters.
type CharacterListResponse struct {
	Characters []*models.CharacterRecord `json:"characters"`
	Total      int                       `json:"total"`
}

// RenameRequest is the body for POST /api/characters/{name}/rename.
type RenameRequest struct {
	NewName string `json:"new_name" validate:"required"`
}

// RenameResponse reports the outcome of a corpus-wide rename.
type RenameResponse struct {
	FilesChanged int      `json:"files_changed"`
	FilesFailed  []string `json:"files_failed,omitempty"`
	CardRenamed  bool     `json:"card_renamed"`
}

func renameResponse(res *cards.RenameResult) RenameResponse {
	return RenameResponse{
		FilesChanged: res.FilesChanged,
		FilesFailed:  res.FilesFailed,
		CardRenamed:  res.CardRenamed,
	}
}

// CategoryRequest is the body for POST /api/characters/{name}/category.
type CategoryRequest struct {
	Category string `json:"category" validate:"required"`
}

// FilterRequest is the body for PUT /api/filter/{view}.
type FilterRequest struct {
	Query string `json:"query"`
}

// OutlineResponse is the payload for GET /api/outline.
type OutlineResponse struct {
	Tree   []*outline.Node `json:"tree"`
	Totals views.Totals    `json:"totals"`
}

// MarkersResponse is the payload for GET /api/markers.
type MarkersResponse struct {
	Groups []views.MarkerGroup `json:"groups"`
}

// TasksResponse is the payload for GET /api/tasks.
type TasksResponse struct {
	Groups []views.TaskGroup `json:"groups"`
}

// StatsResponse is the payload for GET /api/stats.
type StatsResponse struct {
	Totals views.Totals    `json:"totals"`
	Latest *stats.Snapshot `json:"latest,omitempty"`
}

// HistoryResponse is the payload for GET /api/stats/history.
type HistoryResponse struct {
	Snapshots []stats.Snapshot `json:"snapshots"`
}

// RefreshResponse is the payload for POST /api/refresh.
type RefreshResponse struct {
	Status string `json:"status"`
}
