// Package tables holds one imported snapshot of all entity rows: a pure
// keyed-collection holder with no derived state and no validation. It is the
// unvalidated ground truth the database indexes.
package tables

import (
	"sort"

	"github.com/runindex/runindex/internal/domain/model"
)

// Tables keeps one unique-ID-keyed collection per entity type. Inserts
// overwrite on key collision (last write wins) and are idempotent. Tables is
// not safe for concurrent mutation; the ingest pipeline serializes writes.
type Tables struct {
	games      map[uint64]model.Game
	categories map[uint64]model.Category
	levels     map[uint64]model.Level
	users      map[uint64]model.User
	runs       map[uint64]model.Run
}

// New returns empty Tables.
func New() *Tables {
	return &Tables{
		games:      make(map[uint64]model.Game),
		categories: make(map[uint64]model.Category),
		levels:     make(map[uint64]model.Level),
		users:      make(map[uint64]model.User),
		runs:       make(map[uint64]model.Run),
	}
}

// PutGame inserts or overwrites a game row.
func (t *Tables) PutGame(g model.Game) { t.games[g.ID] = g }

// PutCategory inserts or overwrites a category row.
func (t *Tables) PutCategory(c model.Category) { t.categories[c.ID] = c }

// PutLevel inserts or overwrites a level row.
func (t *Tables) PutLevel(l model.Level) { t.levels[l.ID] = l }

// PutUser inserts or overwrites a user row.
func (t *Tables) PutUser(u model.User) { t.users[u.ID] = u }

// PutRun inserts or overwrites a run row.
func (t *Tables) PutRun(r model.Run) { t.runs[r.ID] = r }

// Game returns the row for id, if present.
func (t *Tables) Game(id uint64) (model.Game, bool) { g, ok := t.games[id]; return g, ok }

// Category returns the row for id, if present.
func (t *Tables) Category(id uint64) (model.Category, bool) { c, ok := t.categories[id]; return c, ok }

// Level returns the row for id, if present.
func (t *Tables) Level(id uint64) (model.Level, bool) { l, ok := t.levels[id]; return l, ok }

// User returns the row for id, if present.
func (t *Tables) User(id uint64) (model.User, bool) { u, ok := t.users[id]; return u, ok }

// Run returns the row for id, if present.
func (t *Tables) Run(id uint64) (model.Run, bool) { r, ok := t.runs[id]; return r, ok }

// Games returns all game rows ordered by ID. The slice is freshly allocated;
// callers may keep it.
func (t *Tables) Games() []model.Game {
	out := make([]model.Game, 0, len(t.games))
	for _, g := range t.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Categories returns all category rows ordered by ID.
func (t *Tables) Categories() []model.Category {
	out := make([]model.Category, 0, len(t.categories))
	for _, c := range t.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Levels returns all level rows ordered by ID.
func (t *Tables) Levels() []model.Level {
	out := make([]model.Level, 0, len(t.levels))
	for _, l := range t.levels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Users returns all user rows ordered by ID.
func (t *Tables) Users() []model.User {
	out := make([]model.User, 0, len(t.users))
	for _, u := range t.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Runs returns all run rows ordered by ID.
func (t *Tables) Runs() []model.Run {
	out := make([]model.Run, 0, len(t.runs))
	for _, r := range t.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Remove deletes one row if present and reports whether it existed. Used by
// the clean-build loop to discard rows implicated in integrity errors.
func (t *Tables) Remove(ref model.RowRef) bool {
	switch ref.Kind {
	case model.KindGame:
		_, ok := t.games[ref.ID]
		delete(t.games, ref.ID)
		return ok
	case model.KindCategory:
		_, ok := t.categories[ref.ID]
		delete(t.categories, ref.ID)
		return ok
	case model.KindLevel:
		_, ok := t.levels[ref.ID]
		delete(t.levels, ref.ID)
		return ok
	case model.KindUser:
		_, ok := t.users[ref.ID]
		delete(t.users, ref.ID)
		return ok
	case model.KindRun:
		_, ok := t.runs[ref.ID]
		delete(t.runs, ref.ID)
		return ok
	default:
		return false
	}
}

// Len is the total row count across all entity types.
func (t *Tables) Len() int {
	return len(t.games) + len(t.categories) + len(t.levels) + len(t.users) + len(t.runs)
}

// Counts reports per-entity-type row counts for stats and logging.
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		"games":      len(t.games),
		"categories": len(t.categories),
		"levels":     len(t.levels),
		"users":      len(t.users),
		"runs":       len(t.runs),
	}
}
