// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// ProgressionHandler handles progression requests.
type ProgressionHandler struct {
	deps Dependencies
}

// NewProgressionHandler creates a new progression handler.
func NewProgressionHandler(deps Dependencies) *ProgressionHandler {
	return &ProgressionHandler{deps: deps}
}

// HandleGetProgression handles GET /progression?game=&category=&user= requests.
func (h *ProgressionHandler) HandleGetProgression(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_progression"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	gameSlug := strings.TrimSpace(q.Get("game"))
	categorySlug := strings.TrimSpace(q.Get("category"))
	userSlug := strings.TrimSpace(q.Get("user"))
	if gameSlug == "" || categorySlug == "" || userSlug == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	prog, err := h.deps.Progress(r.Context(), gameSlug, categorySlug, userSlug)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ProgressionView{
		Game:     newGameView(prog.Game),
		Category: newCategoryView(prog.Category),
		User:     newUserView(prog.User),
		Entries:  newProgressEntryViews(prog.Entries),
	})
}
