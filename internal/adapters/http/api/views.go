package api

import (
	"time"

	"github.com/runindex/runindex/internal/domain/leaderboard"
	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/internal/domain/progress"
	"github.com/runindex/runindex/pkg/extid"
	"github.com/runindex/runindex/pkg/slug"
)

// Response shapes. Numeric row IDs never leave the process; every id field
// carries an external token.

// upstreamBase is the public site the mirror's weblinks point back at.
const upstreamBase = "https://www.speedrun.com/"

// GameView is the JSON shape of a game row.
type GameView struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Name          string     `json:"name"`
	PrimaryTiming string     `json:"primary_timing"`
	Weblink       string     `json:"weblink,omitempty"`
	Created       *time.Time `json:"created,omitempty"`
}

// CategoryView is the JSON shape of a category row.
type CategoryView struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Per   string `json:"per"`
	Rules string `json:"rules,omitempty"`
}

// LevelView is the JSON shape of a level row.
type LevelView struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Rules string `json:"rules,omitempty"`
}

// UserView is the JSON shape of a user row.
type UserView struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// PlayerView is one run participant: a user token or a guest name.
type PlayerView struct {
	UserID string `json:"user_id,omitempty"`
	Guest  string `json:"guest,omitempty"`
}

// TimesView carries the measured durations in milliseconds.
type TimesView struct {
	IGT        *uint64 `json:"igt_ms,omitempty"`
	RTA        *uint64 `json:"rta_ms,omitempty"`
	RTANoLoads *uint64 `json:"rta_nl_ms,omitempty"`
}

// RunView is the JSON shape of a run row.
type RunView struct {
	ID        string       `json:"id"`
	Date      string       `json:"date,omitempty"`
	Submitted *time.Time   `json:"submitted,omitempty"`
	Times     TimesView    `json:"times"`
	Players   []PlayerView `json:"players"`
	Videos    []string     `json:"videos,omitempty"`
}

// EntryView is one ranked leaderboard row.
type EntryView struct {
	Rank     int     `json:"rank"`
	TiedRank int     `json:"tied_rank"`
	Tied     bool    `json:"tied"`
	Run      RunView `json:"run"`
}

// ProgressEntryView is one step of a player's improvement history.
type ProgressEntryView struct {
	ProgressMS uint64  `json:"progress_ms"`
	Rank       *int    `json:"rank,omitempty"`
	TiedRank   *int    `json:"tied_rank,omitempty"`
	Tied       bool    `json:"tied,omitempty"`
	Run        RunView `json:"run"`
}

// BoardView is the full response of a leaderboard query.
type BoardView struct {
	Game     GameView     `json:"game"`
	Category CategoryView `json:"category"`
	Level    *LevelView   `json:"level,omitempty"`
	Entries  []EntryView  `json:"entries"`
}

// ProgressionView is the full response of a progression query.
type ProgressionView struct {
	Game     GameView            `json:"game"`
	Category CategoryView        `json:"category"`
	User     UserView            `json:"user"`
	Entries  []ProgressEntryView `json:"entries"`
}

// GameDetailView is the full response of a game query.
type GameDetailView struct {
	Game       GameView       `json:"game"`
	Categories []CategoryView `json:"categories"`
	Levels     []LevelView    `json:"levels"`
}

// token encodes a row ID; IDs in a built database always fit, so the error
// path is unreachable.
func token(id uint64, kind extid.Kind) string {
	t, err := extid.Make(id, kind)
	if err != nil {
		return ""
	}
	return t
}

func newGameView(g model.Game) GameView {
	return GameView{
		ID:            token(g.ID, extid.KindGame),
		Slug:          g.Slug,
		Name:          g.Name,
		PrimaryTiming: g.PrimaryTiming.String(),
		Weblink:       upstreamBase + slug.Upstream(g.Name),
		Created:       g.Created,
	}
}

func newCategoryView(c model.Category) CategoryView {
	return CategoryView{
		ID:    token(c.ID, extid.KindCategory),
		Slug:  c.Slug,
		Name:  c.Name,
		Per:   c.Per.String(),
		Rules: c.Rules,
	}
}

func newLevelView(l model.Level) LevelView {
	return LevelView{
		ID:    token(l.ID, extid.KindLevel),
		Slug:  l.Slug,
		Name:  l.Name,
		Rules: l.Rules,
	}
}

func newUserView(u model.User) UserView {
	return UserView{
		ID:   token(u.ID, extid.KindUser),
		Slug: u.Slug,
		Name: u.Name,
	}
}

func newRunView(r model.Run) RunView {
	v := RunView{
		ID:        token(r.ID, extid.KindRun),
		Submitted: r.Created,
		Times: TimesView{
			IGT:        r.Times.IGT,
			RTA:        r.Times.RTA,
			RTANoLoads: r.Times.RTANoLoads,
		},
		Players: make([]PlayerView, len(r.Players)),
		Videos:  r.Videos,
	}
	if r.Date != nil {
		v.Date = r.Date.Format("2006-01-02")
	}
	for i, p := range r.Players {
		if p.IsGuest() {
			v.Players[i] = PlayerView{Guest: p.GuestName}
		} else {
			v.Players[i] = PlayerView{UserID: token(p.UserID, extid.KindUser)}
		}
	}
	return v
}

func newEntryViews(entries []leaderboard.Entry) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = EntryView{
			Rank:     e.Rank,
			TiedRank: e.TiedRank,
			Tied:     e.IsTied,
			Run:      newRunView(e.Run),
		}
	}
	return out
}

func newProgressEntryViews(entries []progress.Entry) []ProgressEntryView {
	out := make([]ProgressEntryView, len(entries))
	for i, e := range entries {
		view := ProgressEntryView{
			ProgressMS: e.ProgressMS,
			Tied:       e.IsTied,
			Run:        newRunView(e.Run),
		}
		if e.HasRank {
			rank := e.Rank
			tied := e.TiedRank
			view.Rank = &rank
			view.TiedRank = &tied
		}
		out[i] = view
	}
	return out
}
