// Package model contains the normalized entity types mirrored from the
// upstream speedrunning service, and their field-level validation.
//
// All numeric identifiers are 64-bit unsigned integers, non-zero wherever
// they identify a persisted row. Zero means "absent" and only appears in
// optional fields such as a Run's LevelID. IDs are decoded deterministically
// from the upstream's 8-character base-36 identifiers, never reassigned.
package model

import "time"

// TimingMethod selects which of a run's measured durations is authoritative
// for a game's leaderboards.
type TimingMethod uint8

const (
	TimingIGT         TimingMethod = iota // in-game time
	TimingRTA                             // real time
	TimingRTANoLoads                      // real time excluding loads
)

func (m TimingMethod) String() string {
	switch m {
	case TimingIGT:
		return "igt"
	case TimingRTA:
		return "rta"
	case TimingRTANoLoads:
		return "rta_nl"
	default:
		return "timing(?)"
	}
}

// CategoryPer declares whether a category hosts full-game or per-level runs.
type CategoryPer uint8

const (
	PerGame CategoryPer = iota
	PerLevel
)

func (p CategoryPer) String() string {
	if p == PerLevel {
		return "per-level"
	}
	return "per-game"
}

// Game is one speedrun game.
type Game struct {
	ID            uint64
	Created       *time.Time
	Slug          string
	Name          string
	PrimaryTiming TimingMethod
}

// Category is a ruleset under a game; runs belong to exactly one.
type Category struct {
	ID     uint64
	GameID uint64
	Slug   string
	Name   string
	Per    CategoryPer
	Rules  string
}

// Level is an individual stage of a game, ranked separately in per-level
// categories.
type Level struct {
	ID     uint64
	GameID uint64
	Slug   string
	Name   string
	Rules  string
}

// User is a registered runner.
type User struct {
	ID      uint64
	Created *time.Time
	Slug    string
	Name    string
}

// RunTimes holds up to three measured durations in milliseconds. Absence is
// per-kind; at least one must be present for the run to be rankable.
type RunTimes struct {
	IGT        *uint64
	RTA        *uint64
	RTANoLoads *uint64
}

// Get returns the duration for a timing method and whether it is present.
func (t RunTimes) Get(m TimingMethod) (uint64, bool) {
	var v *uint64
	switch m {
	case TimingIGT:
		v = t.IGT
	case TimingRTA:
		v = t.RTA
	case TimingRTANoLoads:
		v = t.RTANoLoads
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Empty reports whether all three durations are absent.
func (t RunTimes) Empty() bool {
	return t.IGT == nil && t.RTA == nil && t.RTANoLoads == nil
}

// Player is one participant in a run: either a reference to a User row or a
// free-text guest name. Exactly one of the two fields is set.
type Player struct {
	UserID    uint64
	GuestName string
}

// IsGuest reports whether the player is an unregistered guest.
func (p Player) IsGuest() bool {
	return p.UserID == 0
}

// Run is one submitted attempt.
type Run struct {
	ID         uint64
	GameID     uint64
	CategoryID uint64
	// LevelID is zero for full-game runs and set iff the category is
	// per-level.
	LevelID uint64
	// Created is the submission timestamp, Date the calendar day the run was
	// performed. Either may be absent.
	Created *time.Time
	Date    *time.Time
	Times   RunTimes
	Players []Player
	// Videos are informational links; never validated beyond presence of
	// content per entry.
	Videos []string
}

// Kind identifies an entity type in diagnostics and external tokens.
type Kind uint8

const (
	KindGame Kind = iota + 1
	KindCategory
	KindLevel
	KindUser
	KindRun
)

func (k Kind) String() string {
	switch k {
	case KindGame:
		return "game"
	case KindCategory:
		return "category"
	case KindLevel:
		return "level"
	case KindUser:
		return "user"
	case KindRun:
		return "run"
	default:
		return "kind(?)"
	}
}

// RowRef names one row of one entity type. Integrity errors carry these so
// callers can delete every implicated row without inspecting payloads.
type RowRef struct {
	Kind Kind
	ID   uint64
}
