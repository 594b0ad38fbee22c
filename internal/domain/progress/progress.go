// Package progress computes progression-over-time: the chronological
// sequence of runs that improved on the best known time for their own
// level scope within one game and category.
package progress

import (
	"fmt"
	"sort"
	"time"

	"github.com/runindex/runindex/internal/domain/leaderboard"
	"github.com/runindex/runindex/internal/domain/model"
)

// Entry is one progress run. ProgressMS is the improvement over the previous
// best in the same partition, zero for the partition's first run. Rank and
// TiedRank carry the run's standing on its scope's current leaderboard when
// the run still appears there.
type Entry struct {
	Run        model.Run
	ProgressMS uint64
	Rank       int
	TiedRank   int
	IsTied     bool
	HasRank    bool
}

// Boards supplies the current leaderboard for one level scope of the game
// and category under consideration (zero level means full-game). Used to
// attach ranking metadata to progress runs.
type Boards func(levelID uint64) []leaderboard.Entry

// History computes the progression of one game+category run history, which
// may span multiple levels. Runs partition by level; each partition is
// walked in chronological order (performed date, submission time, id)
// keeping a running best, and every strict improvement is a progress run.
// Partitions never leak into each other: full-game progression contains
// exactly the zero-level partition. The merged result is ordered most
// recent first. Empty input yields empty output.
//
// The input must share one game and category; mixed scopes are a
// programming error and panic, mirroring the leaderboard engine.
func History(game *model.Game, runs []model.Run, boards Boards) []Entry {
	if len(runs) == 0 {
		return nil
	}
	assertScope(game, runs)

	partitions := make(map[uint64][]model.Run)
	for _, r := range runs {
		partitions[r.LevelID] = append(partitions[r.LevelID], r)
	}

	var merged []Entry
	for levelID, part := range partitions {
		merged = append(merged, walkPartition(game, part, rankIndex(boards, levelID))...)
	}

	// Most recent first: the reverse of the per-partition processing order.
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i].Run, merged[j].Run
		ad, bd := timeOrZero(a.Date), timeOrZero(b.Date)
		if !ad.Equal(bd) {
			return ad.After(bd)
		}
		ac, bc := timeOrZero(a.Created), timeOrZero(b.Created)
		if !ac.Equal(bc) {
			return ac.After(bc)
		}
		return a.ID > b.ID
	})
	return merged
}

// walkPartition emits the progress runs of one level partition in
// chronological order.
func walkPartition(game *model.Game, part []model.Run, ranked map[uint64]leaderboard.Entry) []Entry {
	sort.Slice(part, func(i, j int) bool {
		a, b := part[i], part[j]
		ad, bd := timeOrZero(a.Date), timeOrZero(b.Date)
		if !ad.Equal(bd) {
			return ad.Before(bd)
		}
		ac, bc := timeOrZero(a.Created), timeOrZero(b.Created)
		if !ac.Equal(bc) {
			return ac.Before(bc)
		}
		return a.ID < b.ID
	})

	var out []Entry
	var best uint64
	for i, r := range part {
		ms, ok := r.Times.Get(game.PrimaryTiming)
		if !ok {
			panic(fmt.Sprintf("progress: run %d has no %s time; database validation must exclude it", r.ID, game.PrimaryTiming))
		}
		if i > 0 && ms >= best {
			continue
		}
		entry := Entry{Run: r}
		if i > 0 {
			entry.ProgressMS = best - ms
		}
		if lb, ok := ranked[r.ID]; ok {
			entry.Rank = lb.Rank
			entry.TiedRank = lb.TiedRank
			entry.IsTied = lb.IsTied
			entry.HasRank = true
		}
		out = append(out, entry)
		best = ms
	}
	return out
}

func rankIndex(boards Boards, levelID uint64) map[uint64]leaderboard.Entry {
	if boards == nil {
		return nil
	}
	entries := boards(levelID)
	idx := make(map[uint64]leaderboard.Entry, len(entries))
	for _, e := range entries {
		idx[e.Run.ID] = e
	}
	return idx
}

func assertScope(game *model.Game, runs []model.Run) {
	first := runs[0]
	for _, r := range runs {
		if r.GameID != game.ID || r.CategoryID != first.CategoryID {
			panic(fmt.Sprintf("progress: heterogeneous scope: run %d is not in game %d category %d",
				r.ID, game.ID, first.CategoryID))
		}
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
