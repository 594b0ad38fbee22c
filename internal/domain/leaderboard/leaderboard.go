// Package leaderboard ranks the runs of one scope: a single game, category,
// and level-or-none. Ranking is a pure function of its input slice; it
// shares no state and allocates fresh output, so independent scopes rank in
// parallel freely.
package leaderboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/runindex/runindex/internal/domain/model"
)

// Entry is one ranked run. Rank increases strictly, one per surviving run.
// TiedRank is shared by every run whose primary time equals its
// predecessor's; the first of a tied group donates its rank to the group.
type Entry struct {
	Run      model.Run
	Rank     int
	TiedRank int
	IsTied   bool
}

// Rank orders runs ascending by (primary time, performed date, submission
// time) and assigns ranks with tie handling. Unless includeObsolete is set,
// only the best run per distinct player set survives; later runs by the same
// players are dropped before rank numbers are assigned.
//
// The input must be homogeneous: same game, category, and level, with every
// run carrying the game's primary timing. Database validation excludes
// heterogeneous input and missing primary times, so Rank treats either as a
// programming error and panics rather than masking a validation bug.
// Empty input yields an empty ranking.
func Rank(game *model.Game, runs []model.Run, includeObsolete bool) []Entry {
	if len(runs) == 0 {
		return nil
	}
	assertScope(game, runs)

	ordered := make([]model.Run, len(runs))
	copy(ordered, runs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j], game.PrimaryTiming)
	})

	if !includeObsolete {
		ordered = collapseObsolete(ordered)
	}

	entries := make([]Entry, len(ordered))
	for i, r := range ordered {
		entries[i] = Entry{Run: r, Rank: i + 1, TiedRank: i + 1}
		if i == 0 {
			continue
		}
		if primaryMS(r, game.PrimaryTiming) == primaryMS(ordered[i-1], game.PrimaryTiming) {
			// Retroactive: discovering a tie flags the previous entry too,
			// so both members of a pair carry the flag.
			entries[i].TiedRank = entries[i-1].TiedRank
			entries[i].IsTied = true
			entries[i-1].IsTied = true
		}
	}
	return entries
}

// collapseObsolete keeps the first run per distinct player set in sorted
// order; the first occurrence is that player set's best.
func collapseObsolete(ordered []model.Run) []model.Run {
	seen := make(map[string]struct{}, len(ordered))
	kept := ordered[:0:0]
	for _, r := range ordered {
		key := playerSetKey(r.Players)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	return kept
}

// playerSetKey canonicalizes a run's players so two runs by the exact same
// set compare equal regardless of listing order.
func playerSetKey(players []model.Player) string {
	parts := make([]string, len(players))
	for i, p := range players {
		if p.IsGuest() {
			parts[i] = "g:" + p.GuestName
		} else {
			parts[i] = fmt.Sprintf("u:%d", p.UserID)
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x00")
}

func less(a, b model.Run, timing model.TimingMethod) bool {
	at, bt := primaryMS(a, timing), primaryMS(b, timing)
	if at != bt {
		return at < bt
	}
	ad, bd := timeOrZero(a.Date), timeOrZero(b.Date)
	if !ad.Equal(bd) {
		return ad.Before(bd)
	}
	ac, bc := timeOrZero(a.Created), timeOrZero(b.Created)
	return ac.Before(bc)
}

func primaryMS(r model.Run, timing model.TimingMethod) uint64 {
	ms, ok := r.Times.Get(timing)
	if !ok {
		panic(fmt.Sprintf("leaderboard: run %d has no %s time; database validation must exclude it", r.ID, timing))
	}
	return ms
}

func assertScope(game *model.Game, runs []model.Run) {
	first := runs[0]
	for _, r := range runs {
		if r.GameID != game.ID || r.GameID != first.GameID ||
			r.CategoryID != first.CategoryID || r.LevelID != first.LevelID {
			panic(fmt.Sprintf("leaderboard: heterogeneous scope: run %d is not in (%d,%d,%d)",
				r.ID, first.GameID, first.CategoryID, first.LevelID))
		}
		// Every run must carry the primary timing, including runs the sort
		// comparator never compares (a single-run input reaches neither the
		// comparator nor the tie check).
		primaryMS(r, game.PrimaryTiming)
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
