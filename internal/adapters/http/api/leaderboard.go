// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?game=&category=&level=&obsolete=&limit= requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	gameSlug := strings.TrimSpace(q.Get("game"))
	categorySlug := strings.TrimSpace(q.Get("category"))
	levelSlug := strings.TrimSpace(q.Get("level"))
	if gameSlug == "" || categorySlug == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	includeObsolete := false
	if v := q.Get("obsolete"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		includeObsolete = parsed
	}

	limit := h.maxLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	board, err := h.deps.Leaderboard(r.Context(), gameSlug, categorySlug, levelSlug, includeObsolete)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	entries := board.Entries
	if len(entries) > limit {
		entries = entries[:limit]
	}

	view := BoardView{
		Game:     newGameView(board.Game),
		Category: newCategoryView(board.Category),
		Entries:  newEntryViews(entries),
	}
	if board.Level != nil {
		level := newLevelView(*board.Level)
		view.Level = &level
	}
	writeJSON(w, http.StatusOK, view)
}
