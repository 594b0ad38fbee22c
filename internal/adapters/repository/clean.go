package repository

import (
	"errors"
	"sort"
	"time"

	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/internal/domain/tables"
	"github.com/runindex/runindex/pkg/metrics"
)

// DuplicatePolicy decides, for one NonUniqueSlug group, which of the
// conflicting rows to discard. Which duplicate "wins" is a product policy,
// not a core invariant, so it is pluggable. A policy must return at least
// one of the given rows or the clean loop cannot make progress on that
// violation.
type DuplicatePolicy func(t *tables.Tables, conflicts []model.RowRef) []model.RowRef

// DropAllDuplicates discards every row in a conflicting group. The safest
// default: no heuristic guesses about which duplicate the upstream intended.
func DropAllDuplicates(_ *tables.Tables, conflicts []model.RowRef) []model.RowRef {
	return conflicts
}

// KeepEarliestCreated keeps the row with the earliest creation timestamp,
// breaking ties by shortest name and then lowest ID, and discards the rest.
// Rows without a creation timestamp (and entity types that carry none) fall
// back to the name and ID tie-breaks.
func KeepEarliestCreated(t *tables.Tables, conflicts []model.RowRef) []model.RowRef {
	if len(conflicts) < 2 {
		return nil
	}
	ordered := make([]model.RowRef, len(conflicts))
	copy(ordered, conflicts)
	sort.Slice(ordered, func(i, j int) bool {
		ci, ni := createdAndName(t, ordered[i])
		cj, nj := createdAndName(t, ordered[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		if len(ni) != len(nj) {
			return len(ni) < len(nj)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered[1:]
}

func createdAndName(t *tables.Tables, ref model.RowRef) (created time.Time, name string) {
	switch ref.Kind {
	case model.KindGame:
		if g, ok := t.Game(ref.ID); ok {
			return timeOrZero(g.Created), g.Name
		}
	case model.KindUser:
		if u, ok := t.User(ref.ID); ok {
			return timeOrZero(u.Created), u.Name
		}
	case model.KindCategory:
		if c, ok := t.Category(ref.ID); ok {
			return time.Time{}, c.Name
		}
	case model.KindLevel:
		if l, ok := t.Level(ref.ID); ok {
			return time.Time{}, l.Name
		}
	}
	return time.Time{}, ""
}

// BuildClean repeatedly builds the database, discarding every row implicated
// in the reported violations between attempts, until construction succeeds
// or no rows remain. The loop terminates because each retry strictly shrinks
// the row set; a retry that removes nothing is an internal-logic error
// surfaced as ErrNoProgress. Tables is mutated in place.
func BuildClean(t *tables.Tables, opts ...CleanOption) (*Database, error) {
	cfg := cleanConfig{duplicates: DropAllDuplicates}
	for _, opt := range opts {
		opt(&cfg)
	}

	for {
		db, err := Build(t)
		if err == nil {
			return db, nil
		}
		var integrity *IntegrityErrors
		if !errors.As(err, &integrity) {
			return nil, err
		}

		removed := 0
		for _, ref := range rowsToDrop(t, integrity, cfg.duplicates) {
			if t.Remove(ref) {
				removed++
			}
		}
		metrics.AddRowsDiscarded(removed)
		if removed == 0 {
			return nil, ErrNoProgress
		}
	}
}

// rowsToDrop applies the duplicate policy to NonUniqueSlug groups and takes
// the offending row for every other violation kind, deduplicating across
// errors.
func rowsToDrop(t *tables.Tables, integrity *IntegrityErrors, policy DuplicatePolicy) []model.RowRef {
	seen := make(map[model.RowRef]struct{})
	var out []model.RowRef
	add := func(refs ...model.RowRef) {
		for _, ref := range refs {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}

	for _, e := range integrity.Errors {
		if e.Kind == KindNonUniqueSlug {
			dropped := policy(t, e.Conflicts)
			if len(dropped) == 0 {
				// A policy returning nothing would loop forever on this
				// violation; fall back to dropping the whole group.
				dropped = e.Conflicts
			}
			add(dropped...)
			continue
		}
		add(e.Row)
	}
	return out
}
