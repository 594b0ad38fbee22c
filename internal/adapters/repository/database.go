// Package repository builds and serves the validated, indexed, read-only
// database derived from one imported snapshot of tables.
//
// Construction is atomic: either every derived index is built and full
// referential plus uniqueness integrity holds, or it fails with the
// exhaustive list of violations and no database is produced. A constructed
// Database is immutable and safe for unlimited concurrent reads.
package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/internal/domain/tables"
	"github.com/runindex/runindex/pkg/metrics"
)

// Scope identifies one leaderboard's run population: a game, a category, and
// a level or zero for full-game.
type Scope struct {
	GameID     uint64
	CategoryID uint64
	LevelID    uint64
}

// slugKey is the composite uniqueness key for levels and categories.
type slugKey struct {
	gameID uint64
	slug   string
}

// Database is the derived, validated form of one Tables snapshot. Indices
// store IDs, never pointers into other structures; all linked access goes
// through explicit lookups.
type Database struct {
	games      map[uint64]model.Game
	categories map[uint64]model.Category
	levels     map[uint64]model.Level
	users      map[uint64]model.User
	runs       map[uint64]model.Run

	gamesBySlug           map[string]uint64
	usersBySlug           map[string]uint64
	levelsBySlug          map[slugKey]uint64
	gameCategoriesBySlug  map[slugKey]uint64
	levelCategoriesBySlug map[slugKey]uint64

	// runsByScope buckets are kept sorted ascending by (primary time,
	// performed date, submission time, id) so leaderboard computation never
	// re-sorts.
	runsByScope    map[Scope][]uint64
	runsByCategory map[uint64][]uint64

	watermark time.Time
}

// Build derives a Database from an immutable snapshot of Tables. On any
// integrity violation it returns a *IntegrityErrors carrying the full list;
// it never fails fast on the first problem. Indexing conflicts abort before
// validation runs.
func Build(t *tables.Tables) (*Database, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDatabaseBuildDuration(float64(time.Since(start).Milliseconds()))
		metrics.IncrementDatabaseBuilds()
	}()

	db := &Database{
		games:      make(map[uint64]model.Game),
		categories: make(map[uint64]model.Category),
		levels:     make(map[uint64]model.Level),
		users:      make(map[uint64]model.User),
		runs:       make(map[uint64]model.Run),

		gamesBySlug:           make(map[string]uint64),
		usersBySlug:           make(map[string]uint64),
		levelsBySlug:          make(map[slugKey]uint64),
		gameCategoriesBySlug:  make(map[slugKey]uint64),
		levelCategoriesBySlug: make(map[slugKey]uint64),

		runsByScope:    make(map[Scope][]uint64),
		runsByCategory: make(map[uint64][]uint64),
	}

	if errs := db.index(t); len(errs) > 0 {
		return nil, fail(errs)
	}
	if errs := db.validate(t); len(errs) > 0 {
		return nil, fail(errs)
	}

	db.sortRunBuckets()
	db.computeWatermark()

	for entity, n := range t.Counts() {
		metrics.UpdateDatabaseRows(entity, n)
	}
	metrics.UpdateDatabaseWatermark(float64(db.watermark.Unix()))
	return db, nil
}

func fail(errs []*IntegrityError) error {
	for _, e := range errs {
		metrics.RecordIntegrityError(e.Kind.String())
	}
	return &IntegrityErrors{Errors: errs}
}

// index copies rows out of the snapshot and populates every derived lookup
// map in one pass per table. Key collisions are left for validation to
// report; only structural conflicts (a row whose enum field indexes nowhere)
// surface here.
func (db *Database) index(t *tables.Tables) []*IntegrityError {
	var errs []*IntegrityError

	for _, g := range t.Games() {
		if g.PrimaryTiming > model.TimingRTANoLoads {
			errs = append(errs, &IntegrityError{
				Kind:   KindIndexing,
				Row:    model.RowRef{Kind: model.KindGame, ID: g.ID},
				Detail: fmt.Sprintf("unindexable primary timing %d", g.PrimaryTiming),
			})
			continue
		}
		db.games[g.ID] = g
		db.gamesBySlug[g.Slug] = g.ID
	}

	for _, c := range t.Categories() {
		key := slugKey{gameID: c.GameID, slug: c.Slug}
		switch c.Per {
		case model.PerGame:
			db.gameCategoriesBySlug[key] = c.ID
		case model.PerLevel:
			db.levelCategoriesBySlug[key] = c.ID
		default:
			errs = append(errs, &IntegrityError{
				Kind:   KindIndexing,
				Row:    model.RowRef{Kind: model.KindCategory, ID: c.ID},
				Detail: fmt.Sprintf("unindexable per kind %d", c.Per),
			})
			continue
		}
		db.categories[c.ID] = c
	}

	for _, l := range t.Levels() {
		db.levels[l.ID] = l
		db.levelsBySlug[slugKey{gameID: l.GameID, slug: l.Slug}] = l.ID
	}

	for _, u := range t.Users() {
		db.users[u.ID] = u
		db.usersBySlug[u.Slug] = u.ID
	}

	for _, r := range t.Runs() {
		db.runs[r.ID] = r
		scope := Scope{GameID: r.GameID, CategoryID: r.CategoryID, LevelID: r.LevelID}
		db.runsByScope[scope] = append(db.runsByScope[scope], r.ID)
		db.runsByCategory[r.CategoryID] = append(db.runsByCategory[r.CategoryID], r.ID)
	}

	return errs
}

// validate performs the full referential-integrity and uniqueness pass over
// the snapshot, collecting every violation.
func (db *Database) validate(t *tables.Tables) []*IntegrityError {
	var errs []*IntegrityError

	add := func(e *IntegrityError) { errs = append(errs, e) }

	for _, c := range t.Categories() {
		ref := model.RowRef{Kind: model.KindCategory, ID: c.ID}
		if _, ok := db.games[c.GameID]; !ok {
			add(&IntegrityError{Kind: KindForeignKeyMissing, Row: ref, Field: "game_id"})
		}
		if vs := c.Validate(); len(vs) > 0 {
			add(&IntegrityError{Kind: KindCheckFailed, Row: ref, Violations: vs})
		}
	}

	for _, l := range t.Levels() {
		ref := model.RowRef{Kind: model.KindLevel, ID: l.ID}
		if _, ok := db.games[l.GameID]; !ok {
			add(&IntegrityError{Kind: KindForeignKeyMissing, Row: ref, Field: "game_id"})
		}
		if vs := l.Validate(); len(vs) > 0 {
			add(&IntegrityError{Kind: KindCheckFailed, Row: ref, Violations: vs})
		}
	}

	for _, g := range t.Games() {
		if vs := g.Validate(); len(vs) > 0 {
			add(&IntegrityError{Kind: KindCheckFailed, Row: model.RowRef{Kind: model.KindGame, ID: g.ID}, Violations: vs})
		}
	}

	for _, u := range t.Users() {
		if vs := u.Validate(); len(vs) > 0 {
			add(&IntegrityError{Kind: KindCheckFailed, Row: model.RowRef{Kind: model.KindUser, ID: u.ID}, Violations: vs})
		}
	}

	for _, r := range t.Runs() {
		errs = append(errs, db.validateRun(&r)...)
	}

	errs = append(errs, db.validateUniqueness(t)...)
	return errs
}

func (db *Database) validateRun(r *model.Run) []*IntegrityError {
	var errs []*IntegrityError
	ref := model.RowRef{Kind: model.KindRun, ID: r.ID}
	add := func(e *IntegrityError) { errs = append(errs, e) }

	game, gameOK := db.games[r.GameID]
	if !gameOK {
		add(&IntegrityError{Kind: KindForeignKeyMissing, Row: ref, Field: "game_id"})
	}

	category, categoryOK := db.categories[r.CategoryID]
	switch {
	case !categoryOK:
		add(&IntegrityError{Kind: KindForeignKeyMissing, Row: ref, Field: "category_id"})
	case category.GameID != r.GameID:
		add(&IntegrityError{
			Kind: KindForeignKeyMissing, Row: ref, Field: "category_id",
			Detail: "category belongs to a different game",
		})
	}

	if r.LevelID != 0 {
		level, ok := db.levels[r.LevelID]
		switch {
		case !ok:
			add(&IntegrityError{Kind: KindForeignKeyMissing, Row: ref, Field: "level_id"})
		case level.GameID != r.GameID:
			add(&IntegrityError{
				Kind: KindForeignKeyMissing, Row: ref, Field: "level_id",
				Detail: "level belongs to a different game",
			})
		}
	}

	// Per-kind consistency between the category and the run's level scope.
	if categoryOK {
		switch {
		case category.Per == model.PerGame && r.LevelID != 0:
			add(&IntegrityError{
				Kind: KindCheckFailed, Row: ref,
				Violations: []model.Violation{{Field: "level_id", Message: "per-game category forbids a level"}},
			})
		case category.Per == model.PerLevel && r.LevelID == 0:
			add(&IntegrityError{
				Kind: KindCheckFailed, Row: ref,
				Violations: []model.Violation{{Field: "level_id", Message: "per-level category requires a level"}},
			})
		}
	}

	for i, p := range r.Players {
		if p.UserID == 0 {
			continue
		}
		if _, ok := db.users[p.UserID]; !ok {
			add(&IntegrityError{
				Kind: KindForeignKeyMissing, Row: ref,
				Field: fmt.Sprintf("players[%d].user_id", i),
			})
		}
	}

	if gameOK {
		if _, ok := r.Times.Get(game.PrimaryTiming); !ok {
			add(&IntegrityError{
				Kind: KindMissingPrimaryTiming, Row: ref,
				Detail: fmt.Sprintf("game ranks by %s", game.PrimaryTiming),
			})
		}
	}

	if vs := r.Validate(); len(vs) > 0 {
		add(&IntegrityError{Kind: KindCheckFailed, Row: ref, Violations: vs})
	}
	return errs
}

// validateUniqueness collects every group of rows sharing a uniqueness key
// and emits one NonUniqueSlug error per group, naming all members so callers
// can pick which duplicates to discard.
func (db *Database) validateUniqueness(t *tables.Tables) []*IntegrityError {
	var errs []*IntegrityError

	gameGroups := make(map[string][]model.RowRef)
	for _, g := range t.Games() {
		gameGroups[g.Slug] = append(gameGroups[g.Slug], model.RowRef{Kind: model.KindGame, ID: g.ID})
	}
	errs = append(errs, nonUniqueIn(gameGroups)...)

	userGroups := make(map[string][]model.RowRef)
	for _, u := range t.Users() {
		userGroups[u.Slug] = append(userGroups[u.Slug], model.RowRef{Kind: model.KindUser, ID: u.ID})
	}
	errs = append(errs, nonUniqueIn(userGroups)...)

	levelGroups := make(map[slugKey][]model.RowRef)
	for _, l := range t.Levels() {
		key := slugKey{gameID: l.GameID, slug: l.Slug}
		levelGroups[key] = append(levelGroups[key], model.RowRef{Kind: model.KindLevel, ID: l.ID})
	}
	errs = append(errs, nonUniqueIn(levelGroups)...)

	// Per-game and per-level categories may legitimately share a
	// (game, slug) pair, so the per kind participates in the key.
	type categoryKey struct {
		gameID uint64
		per    model.CategoryPer
		slug   string
	}
	categoryGroups := make(map[categoryKey][]model.RowRef)
	for _, c := range t.Categories() {
		key := categoryKey{gameID: c.GameID, per: c.Per, slug: c.Slug}
		categoryGroups[key] = append(categoryGroups[key], model.RowRef{Kind: model.KindCategory, ID: c.ID})
	}
	errs = append(errs, nonUniqueIn(categoryGroups)...)

	return errs
}

func nonUniqueIn[K comparable](groups map[K][]model.RowRef) []*IntegrityError {
	var errs []*IntegrityError
	for _, refs := range groups {
		if len(refs) < 2 {
			continue
		}
		errs = append(errs, &IntegrityError{
			Kind:      KindNonUniqueSlug,
			Row:       refs[0],
			Conflicts: refs,
		})
	}
	// Map iteration order is random; keep the error list deterministic.
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Row.Kind != errs[j].Row.Kind {
			return errs[i].Row.Kind < errs[j].Row.Kind
		}
		return errs[i].Row.ID < errs[j].Row.ID
	})
	return errs
}

// sortRunBuckets orders every scope bucket ascending by (primary time,
// performed date, submission time, id). Absent dates and timestamps sort
// before present ones. Only called after validation, so every referenced
// game resolves and every run has its primary timing.
func (db *Database) sortRunBuckets() {
	for scope, ids := range db.runsByScope {
		game := db.games[scope.GameID]
		sort.Slice(ids, func(i, j int) bool {
			return db.runLess(db.runs[ids[i]], db.runs[ids[j]], game.PrimaryTiming)
		})
	}
	for _, ids := range db.runsByCategory {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
}

func (db *Database) runLess(a, b model.Run, timing model.TimingMethod) bool {
	at, _ := a.Times.Get(timing)
	bt, _ := b.Times.Get(timing)
	if at != bt {
		return at < bt
	}
	ad, bd := timeOrZero(a.Date), timeOrZero(b.Date)
	if !ad.Equal(bd) {
		return ad.Before(bd)
	}
	ac, bc := timeOrZero(a.Created), timeOrZero(b.Created)
	if !ac.Equal(bc) {
		return ac.Before(bc)
	}
	return a.ID < b.ID
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// computeWatermark records the maximum run submission time, or the epoch if
// no run carries one.
func (db *Database) computeWatermark() {
	db.watermark = time.Unix(0, 0).UTC()
	for _, r := range db.runs {
		if r.Created != nil && r.Created.After(db.watermark) {
			db.watermark = *r.Created
		}
	}
}
