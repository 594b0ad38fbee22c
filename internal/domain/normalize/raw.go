package normalize

import "time"

// Raw upstream-shaped records, one JSON object per snapshot line. Field names
// mirror the remote API and are decoded as-is; everything here is untrusted
// until it passes through the normalizer.

// RawNames carries the localized name variants of a game or user.
type RawNames struct {
	International string `json:"international"`
	Japanese      string `json:"japanese"`
}

// RawRuleset carries the subset of a game's ruleset we consume.
type RawRuleset struct {
	// DefaultTime is one of "ingame", "realtime", "realtime_noloads".
	DefaultTime string `json:"default-time"`
}

// RawCategory is a category embedded in a game record.
type RawCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"` // "per-game" or "per-level"
	Rules string `json:"rules"`
}

// RawLevel is a level embedded in a game record.
type RawLevel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Rules string `json:"rules"`
}

// RawGame is one game record with its embedded category and level
// sub-collections.
type RawGame struct {
	ID         string     `json:"id"`
	Names      RawNames   `json:"names"`
	Created    *time.Time `json:"created"`
	Ruleset    RawRuleset `json:"ruleset"`
	Categories struct {
		Data []RawCategory `json:"data"`
	} `json:"categories"`
	Levels struct {
		Data []RawLevel `json:"data"`
	} `json:"levels"`
}

// RawUser is one user record.
type RawUser struct {
	ID      string     `json:"id"`
	Names   RawNames   `json:"names"`
	Created *time.Time `json:"created"`
}

// RawRunStatus carries a run's moderation state.
type RawRunStatus struct {
	Status string `json:"status"` // "verified", "new", "rejected"
}

// RawRunTimes carries the measured durations as ISO-8601-style strings.
type RawRunTimes struct {
	InGame          *string `json:"ingame"`
	RealTime        *string `json:"realtime"`
	RealTimeNoLoads *string `json:"realtime_noloads"`
}

// RawRunPlayer is one participant: a user reference or a named guest.
type RawRunPlayer struct {
	Rel  string `json:"rel"` // "user" or "guest"
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawLink is one video link.
type RawLink struct {
	URI string `json:"uri"`
}

// RawRunVideos wraps a run's video links.
type RawRunVideos struct {
	Links []RawLink `json:"links"`
}

// RawRun is one run record.
type RawRun struct {
	ID        string         `json:"id"`
	Game      string         `json:"game"`
	Category  string         `json:"category"`
	Level     *string        `json:"level"`
	Date      string         `json:"date"` // "2006-01-02", may be empty
	Submitted *time.Time     `json:"submitted"`
	Status    RawRunStatus   `json:"status"`
	Times     RawRunTimes    `json:"times"`
	Players   []RawRunPlayer `json:"players"`
	Videos    *RawRunVideos  `json:"videos"`
}
