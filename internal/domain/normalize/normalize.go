// Package normalize converts raw upstream-shaped records into the entity
// model: IDs re-encoded from base-36, names chosen from localized variants,
// slugs derived, durations parsed, and unverified runs filtered out. Every
// produced entity is validated before being returned.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/pkg/base36"
	"github.com/runindex/runindex/pkg/slug"
)

// statusVerified is the only run status that survives normalization.
const statusVerified = "verified"

// dateLayout is the calendar-date format of a run's performed date.
const dateLayout = "2006-01-02"

// chooseName picks the first non-empty candidate from the ordered preference
// list of localized name variants.
func chooseName(names RawNames) (string, error) {
	for _, candidate := range []string{names.International, names.Japanese} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate), nil
		}
	}
	return "", ErrNoNames
}

func decodeID(kind model.Kind, raw string) (uint64, error) {
	id, err := base36.Decode(raw)
	if err != nil {
		return 0, fmt.Errorf("%s id %q: %w: %w", kind, raw, ErrInvalidID, err)
	}
	return id, nil
}

// PlaceholderName is the synthetic display name assigned to an upstream user
// record with no usable name, so that runs referencing it stay resolvable.
func PlaceholderName(id uint64) string {
	return "user " + base36.MustEncode(id)
}

// User normalizes one raw user record. An unnamed user is not dropped: it is
// given a placeholder name embedding its ID, and the second return value
// reports that leniency so importers can count NoNames occurrences.
func User(raw *RawUser) (model.User, bool, error) {
	id, err := decodeID(model.KindUser, raw.ID)
	if err != nil {
		return model.User{}, false, err
	}
	placeholder := false
	name, err := chooseName(raw.Names)
	if err != nil {
		name = PlaceholderName(id)
		placeholder = true
	}
	user := model.User{
		ID:      id,
		Created: raw.Created,
		Slug:    slug.Canonical(name),
		Name:    name,
	}
	if vs := user.Validate(); len(vs) > 0 {
		return model.User{}, false, &ValidationError{Kind: model.KindUser, ID: id, Violations: vs}
	}
	return user, placeholder, nil
}

// Game normalizes one raw game record, unpacking its embedded category and
// level sub-collections into three parallel outputs in a single pass.
// Category and level slugs derive from their own names, not the upstream's
// slug fields.
func Game(raw *RawGame) (model.Game, []model.Category, []model.Level, error) {
	id, err := decodeID(model.KindGame, raw.ID)
	if err != nil {
		return model.Game{}, nil, nil, err
	}
	name, err := chooseName(raw.Names)
	if err != nil {
		return model.Game{}, nil, nil, fmt.Errorf("game %q: %w", raw.ID, err)
	}
	timing, err := primaryTiming(raw.Ruleset.DefaultTime)
	if err != nil {
		return model.Game{}, nil, nil, err
	}

	game := model.Game{
		ID:            id,
		Created:       raw.Created,
		Slug:          slug.Canonical(name),
		Name:          name,
		PrimaryTiming: timing,
	}
	if vs := game.Validate(); len(vs) > 0 {
		return model.Game{}, nil, nil, &ValidationError{Kind: model.KindGame, ID: id, Violations: vs}
	}

	categories := make([]model.Category, 0, len(raw.Categories.Data))
	for i := range raw.Categories.Data {
		category, err := normalizeCategory(id, &raw.Categories.Data[i])
		if err != nil {
			return model.Game{}, nil, nil, err
		}
		categories = append(categories, category)
	}

	levels := make([]model.Level, 0, len(raw.Levels.Data))
	for i := range raw.Levels.Data {
		level, err := normalizeLevel(id, &raw.Levels.Data[i])
		if err != nil {
			return model.Game{}, nil, nil, err
		}
		levels = append(levels, level)
	}

	return game, categories, levels, nil
}

func primaryTiming(defaultTime string) (model.TimingMethod, error) {
	switch defaultTime {
	case "ingame":
		return model.TimingIGT, nil
	case "realtime", "":
		// The upstream omits the ruleset on very old games; real time is its
		// documented default.
		return model.TimingRTA, nil
	case "realtime_noloads":
		return model.TimingRTANoLoads, nil
	default:
		return 0, fmt.Errorf("default-time %q: %w", defaultTime, ErrTimingMethod)
	}
}

func normalizeCategory(gameID uint64, raw *RawCategory) (model.Category, error) {
	id, err := decodeID(model.KindCategory, raw.ID)
	if err != nil {
		return model.Category{}, err
	}
	var per model.CategoryPer
	switch raw.Type {
	case "per-game":
		per = model.PerGame
	case "per-level":
		per = model.PerLevel
	default:
		return model.Category{}, fmt.Errorf("category %q type %q: %w", raw.ID, raw.Type, ErrCategoryType)
	}
	category := model.Category{
		ID:     id,
		GameID: gameID,
		Slug:   slug.Canonical(raw.Name),
		Name:   strings.TrimSpace(raw.Name),
		Per:    per,
		Rules:  raw.Rules,
	}
	if vs := category.Validate(); len(vs) > 0 {
		return model.Category{}, &ValidationError{Kind: model.KindCategory, ID: id, Violations: vs}
	}
	return category, nil
}

func normalizeLevel(gameID uint64, raw *RawLevel) (model.Level, error) {
	id, err := decodeID(model.KindLevel, raw.ID)
	if err != nil {
		return model.Level{}, err
	}
	level := model.Level{
		ID:     id,
		GameID: gameID,
		Slug:   slug.Canonical(raw.Name),
		Name:   strings.TrimSpace(raw.Name),
		Rules:  raw.Rules,
	}
	if vs := level.Validate(); len(vs) > 0 {
		return model.Level{}, &ValidationError{Kind: model.KindLevel, ID: id, Violations: vs}
	}
	return level, nil
}

// Run normalizes one raw run record. Runs that are not in verified status
// normalize to no output with no error. The run's duration strings are
// parsed to milliseconds, preserving per-kind absence.
func Run(raw *RawRun) (*model.Run, error) {
	if raw.Status.Status != statusVerified {
		return nil, nil
	}

	id, err := decodeID(model.KindRun, raw.ID)
	if err != nil {
		return nil, err
	}
	gameID, err := decodeID(model.KindGame, raw.Game)
	if err != nil {
		return nil, err
	}
	categoryID, err := decodeID(model.KindCategory, raw.Category)
	if err != nil {
		return nil, err
	}
	var levelID uint64
	if raw.Level != nil && *raw.Level != "" {
		levelID, err = decodeID(model.KindLevel, *raw.Level)
		if err != nil {
			return nil, err
		}
	}

	times, err := normalizeTimes(raw.Times)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", raw.ID, err)
	}

	var date *time.Time
	if raw.Date != "" {
		d, err := time.ParseInLocation(dateLayout, raw.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("run %q date %q: %w", raw.ID, raw.Date, ErrDate)
		}
		date = &d
	}

	players := make([]model.Player, 0, len(raw.Players))
	for _, p := range raw.Players {
		player, err := normalizePlayer(p)
		if err != nil {
			return nil, fmt.Errorf("run %q: %w", raw.ID, err)
		}
		players = append(players, player)
	}

	var videos []string
	if raw.Videos != nil {
		for _, link := range raw.Videos.Links {
			if link.URI != "" {
				videos = append(videos, link.URI)
			}
		}
	}

	run := &model.Run{
		ID:         id,
		GameID:     gameID,
		CategoryID: categoryID,
		LevelID:    levelID,
		Created:    raw.Submitted,
		Date:       date,
		Times:      times,
		Players:    players,
		Videos:     videos,
	}
	if vs := run.Validate(); len(vs) > 0 {
		return nil, &ValidationError{Kind: model.KindRun, ID: id, Violations: vs}
	}
	return run, nil
}

func normalizeTimes(raw RawRunTimes) (model.RunTimes, error) {
	var times model.RunTimes
	for _, entry := range []struct {
		src *string
		dst **uint64
	}{
		{raw.InGame, &times.IGT},
		{raw.RealTime, &times.RTA},
		{raw.RealTimeNoLoads, &times.RTANoLoads},
	} {
		if entry.src == nil || *entry.src == "" {
			continue
		}
		ms, err := ParseDurationMS(*entry.src)
		if err != nil {
			return model.RunTimes{}, err
		}
		v := ms
		*entry.dst = &v
	}
	return times, nil
}

func normalizePlayer(raw RawRunPlayer) (model.Player, error) {
	switch raw.Rel {
	case "user":
		id, err := decodeID(model.KindUser, raw.ID)
		if err != nil {
			return model.Player{}, err
		}
		return model.Player{UserID: id}, nil
	case "guest":
		return model.Player{GuestName: strings.TrimSpace(raw.Name)}, nil
	default:
		return model.Player{}, fmt.Errorf("rel %q: %w", raw.Rel, ErrPlayerRel)
	}
}
