package repository

import (
	"sort"
	"time"

	"github.com/runindex/runindex/internal/domain/model"
)

// Lookup operations. All run in O(1) or O(log n) through the derived
// indices, except the per-game listings, which are documented full scans on
// non-hot paths.

// GameByID returns the game row for id.
func (db *Database) GameByID(id uint64) (model.Game, bool) {
	g, ok := db.games[id]
	return g, ok
}

// CategoryByID returns the category row for id.
func (db *Database) CategoryByID(id uint64) (model.Category, bool) {
	c, ok := db.categories[id]
	return c, ok
}

// LevelByID returns the level row for id.
func (db *Database) LevelByID(id uint64) (model.Level, bool) {
	l, ok := db.levels[id]
	return l, ok
}

// UserByID returns the user row for id.
func (db *Database) UserByID(id uint64) (model.User, bool) {
	u, ok := db.users[id]
	return u, ok
}

// RunByID returns the run row for id.
func (db *Database) RunByID(id uint64) (model.Run, bool) {
	r, ok := db.runs[id]
	return r, ok
}

// GameBySlug resolves a game by its canonical slug.
func (db *Database) GameBySlug(s string) (model.Game, bool) {
	id, ok := db.gamesBySlug[s]
	if !ok {
		return model.Game{}, false
	}
	return db.games[id], true
}

// UserBySlug resolves a user by its canonical slug.
func (db *Database) UserBySlug(s string) (model.User, bool) {
	id, ok := db.usersBySlug[s]
	if !ok {
		return model.User{}, false
	}
	return db.users[id], true
}

// LevelBySlug resolves a level by (game, slug).
func (db *Database) LevelBySlug(gameID uint64, s string) (model.Level, bool) {
	id, ok := db.levelsBySlug[slugKey{gameID: gameID, slug: s}]
	if !ok {
		return model.Level{}, false
	}
	return db.levels[id], true
}

// GameCategoryBySlug resolves a per-game category by (game, slug).
func (db *Database) GameCategoryBySlug(gameID uint64, s string) (model.Category, bool) {
	id, ok := db.gameCategoriesBySlug[slugKey{gameID: gameID, slug: s}]
	if !ok {
		return model.Category{}, false
	}
	return db.categories[id], true
}

// LevelCategoryBySlug resolves a per-level category by (game, slug). A
// per-game and a per-level category may share the same pair; the two indices
// never mix.
func (db *Database) LevelCategoryBySlug(gameID uint64, s string) (model.Category, bool) {
	id, ok := db.levelCategoriesBySlug[slugKey{gameID: gameID, slug: s}]
	if !ok {
		return model.Category{}, false
	}
	return db.categories[id], true
}

// RunsForScope returns the runs of one leaderboard scope in ranking order:
// ascending primary time, date, submission time. The slice is freshly
// allocated; callers may keep or reorder it.
func (db *Database) RunsForScope(s Scope) []model.Run {
	ids := db.runsByScope[s]
	out := make([]model.Run, len(ids))
	for i, id := range ids {
		out[i] = db.runs[id]
	}
	return out
}

// RunsForCategory returns every run of one category across all of its
// levels, ordered by run ID. Progression queries chronologize these
// themselves.
func (db *Database) RunsForCategory(categoryID uint64) []model.Run {
	ids := db.runsByCategory[categoryID]
	out := make([]model.Run, len(ids))
	for i, id := range ids {
		out[i] = db.runs[id]
	}
	return out
}

// LevelsForGame lists a game's levels ordered by name. Full scan; acceptable
// outside the leaderboard hot path.
func (db *Database) LevelsForGame(gameID uint64) []model.Level {
	var out []model.Level
	for _, l := range db.levels {
		if l.GameID == gameID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CategoriesForGame lists a game's categories ordered by name. Full scan;
// acceptable outside the leaderboard hot path.
func (db *Database) CategoriesForGame(gameID uint64) []model.Category {
	var out []model.Category
	for _, c := range db.categories {
		if c.GameID == gameID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Games lists all games ordered by name, for browse surfaces.
func (db *Database) Games() []model.Game {
	out := make([]model.Game, 0, len(db.games))
	for _, g := range db.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Watermark is the maximum run submission time in the snapshot, or the epoch
// if no run carries one. Consumers report it as "last updated".
func (db *Database) Watermark() time.Time {
	return db.watermark
}

// Counts reports per-entity-type row counts.
func (db *Database) Counts() map[string]int {
	return map[string]int{
		"games":      len(db.games),
		"categories": len(db.categories),
		"levels":     len(db.levels),
		"users":      len(db.users),
		"runs":       len(db.runs),
	}
}
