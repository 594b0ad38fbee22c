// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// GamesHandler handles game browse requests.
type GamesHandler struct {
	deps Dependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps Dependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleListGames handles GET /games requests.
func (h *GamesHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	games, err := h.deps.Games(r.Context())
	if err != nil {
		writeLookupError(w, err)
		return
	}

	views := make([]GameView, len(games))
	for i, g := range games {
		views[i] = newGameView(g)
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGetGame handles GET /games/{slug} requests.
func (h *GamesHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_game"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	// Extract path parameter after /games/
	slug := strings.TrimPrefix(r.URL.Path, "/games/")
	if slug == "" || strings.Contains(slug, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	detail, err := h.deps.GameBySlug(r.Context(), slug)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	view := GameDetailView{
		Game:       newGameView(detail.Game),
		Categories: make([]CategoryView, len(detail.Categories)),
		Levels:     make([]LevelView, len(detail.Levels)),
	}
	for i, c := range detail.Categories {
		view.Categories[i] = newCategoryView(c)
	}
	for i, l := range detail.Levels {
		view.Levels[i] = newLevelView(l)
	}
	writeJSON(w, http.StatusOK, view)
}
