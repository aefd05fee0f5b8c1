package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Characters.
	r.Get("/characters", h.ListCharacters)
	r.Get("/characters/{name}", h.GetCharacter)
	r.Post("/characters/{name}/rename", h.RenameCharacter)
	r.Post("/characters/{name}/category", h.SetCategory)

	// Structure and markers.
	r.Get("/outline", h.Outline)
	r.Get("/markers", h.Markers)
	r.Get("/tasks", h.Tasks)

	// Statistics.
	r.Get("/stats", h.Stats)
	r.Get("/stats/history", h.StatsHistory)

	// Refresh and view filters.
	r.Post("/refresh", h.Refresh)
	r.Put("/filter/{view}", h.SetFilter)
	r.Delete("/filter/{view}", h.ClearFilter)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
