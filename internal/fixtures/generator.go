package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/runindex/runindex/internal/domain/normalize"
	"github.com/runindex/runindex/pkg/base36"
)

// Name fragments for generated games and users.
var (
	gameAdjectives = []string{"Crystal", "Shattered", "Neon", "Forgotten", "Turbo", "Hollow", "Solar", "Rusty"}
	gameNouns      = []string{"Caverns", "Kingdom", "Circuit", "Depths", "Odyssey", "Fortress", "Frontier", "Abyss"}
	categoryNames  = []string{"Any%", "100%", "Glitchless", "Low%"}
	levelNames     = []string{"Overgrown Ruins", "Sunken City", "Clockwork Spire", "Ember Fields"}
	userHandles    = []string{"comet", "drift", "echo", "fable", "lumen", "nova", "pixel", "quark", "raven", "sable"}
	timingMethods  = []string{"ingame", "realtime", "realtime_noloads"}
)

// Rates of the rarer record shapes, out of 100.
const (
	guestPlayerRate  = 10
	unverifiedRate   = 8
	missingDateRate  = 5
	videoRate        = 60
	perLevelGameRate = 50
	secondPlayerRate = 6
)

// Duration bounds for generated runs, in milliseconds.
const (
	minRunMS  = 45_000
	runSpread = 7_200_000
)

// generator produces raw records from a seeded source. IDs are allocated
// from per-kind counters, so records never collide within a snapshot.
type generator struct {
	cfg *Config
	rng *rand.Rand

	gameSeq     uint64
	categorySeq uint64
	levelSeq    uint64
	userSeq     uint64
	runSeq      uint64
}

func newGenerator(cfg *Config) *generator {
	return &generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// epoch anchors all generated timestamps so output is reproducible.
var epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func (g *generator) timestamp() *time.Time {
	t := epoch.Add(time.Duration(g.rng.Int63n(int64(3 * 365 * 24 * time.Hour))))
	t = t.Truncate(time.Second)
	return &t
}

func (g *generator) chance(rate int) bool {
	return g.rng.Intn(100) < rate
}

func nextID(seq *uint64) string {
	*seq++
	return base36.MustEncode(*seq)
}

// Generate builds a full snapshot worth of raw records.
func (g *generator) Generate() ([]normalize.RawGame, []normalize.RawUser, []normalize.RawRun) {
	games := make([]normalize.RawGame, 0, g.cfg.Games)
	for i := 0; i < g.cfg.Games; i++ {
		games = append(games, g.game(i))
	}

	users := make([]normalize.RawUser, 0, g.cfg.Users)
	for i := 0; i < g.cfg.Users; i++ {
		users = append(users, g.user(i))
	}

	var runs []normalize.RawRun
	for _, game := range games {
		for _, cat := range game.Categories.Data {
			if cat.Type == "per-game" {
				runs = append(runs, g.board(game.ID, cat.ID, nil, users)...)
				continue
			}
			for _, level := range game.Levels.Data {
				levelID := level.ID
				runs = append(runs, g.board(game.ID, cat.ID, &levelID, users)...)
			}
		}
	}
	return games, users, runs
}

func (g *generator) game(index int) normalize.RawGame {
	var game normalize.RawGame
	game.ID = nextID(&g.gameSeq)
	game.Names.International = fmt.Sprintf("%s %s %d",
		gameAdjectives[g.rng.Intn(len(gameAdjectives))],
		gameNouns[g.rng.Intn(len(gameNouns))],
		index+1)
	game.Created = g.timestamp()
	game.Ruleset.DefaultTime = timingMethods[g.rng.Intn(len(timingMethods))]

	full := 1 + g.rng.Intn(2)
	for i := 0; i < full; i++ {
		game.Categories.Data = append(game.Categories.Data, normalize.RawCategory{
			ID:    nextID(&g.categorySeq),
			Name:  categoryNames[i],
			Type:  "per-game",
			Rules: "Reach the credits.",
		})
	}

	if g.chance(perLevelGameRate) {
		game.Categories.Data = append(game.Categories.Data, normalize.RawCategory{
			ID:   nextID(&g.categorySeq),
			Name: "Individual Level",
			Type: "per-level",
		})
		levels := 1 + g.rng.Intn(3)
		for i := 0; i < levels; i++ {
			game.Levels.Data = append(game.Levels.Data, normalize.RawLevel{
				ID:   nextID(&g.levelSeq),
				Name: levelNames[i%len(levelNames)],
			})
		}
	}
	return game
}

func (g *generator) user(index int) normalize.RawUser {
	var user normalize.RawUser
	user.ID = nextID(&g.userSeq)
	user.Names.International = fmt.Sprintf("%s%03d", userHandles[g.rng.Intn(len(userHandles))], index)
	user.Created = g.timestamp()
	return user
}

func (g *generator) board(gameID, categoryID string, levelID *string, users []normalize.RawUser) []normalize.RawRun {
	runs := make([]normalize.RawRun, 0, g.cfg.RunsPerBoard)
	for i := 0; i < g.cfg.RunsPerBoard; i++ {
		runs = append(runs, g.run(gameID, categoryID, levelID, users))
	}
	return runs
}

func (g *generator) run(gameID, categoryID string, levelID *string, users []normalize.RawUser) normalize.RawRun {
	var run normalize.RawRun
	run.ID = nextID(&g.runSeq)
	run.Game = gameID
	run.Category = categoryID
	run.Level = levelID
	run.Submitted = g.timestamp()
	if !g.chance(missingDateRate) {
		run.Date = run.Submitted.Format("2006-01-02")
	}

	run.Status.Status = "verified"
	if g.chance(unverifiedRate) {
		run.Status.Status = "new"
	}

	primary := formatDurationMS(minRunMS + uint64(g.rng.Int63n(runSpread)))
	run.Times.InGame = &primary

	run.Players = append(run.Players, g.player(users))
	if g.chance(secondPlayerRate) {
		run.Players = append(run.Players, g.player(users))
	}

	if g.chance(videoRate) {
		run.Videos = &normalize.RawRunVideos{
			Links: []normalize.RawLink{{URI: "https://video.example/" + run.ID}},
		}
	}
	return run
}

func (g *generator) player(users []normalize.RawUser) normalize.RawRunPlayer {
	if g.chance(guestPlayerRate) {
		return normalize.RawRunPlayer{
			Rel:  "guest",
			Name: fmt.Sprintf("guest-%s", userHandles[g.rng.Intn(len(userHandles))]),
		}
	}
	return normalize.RawRunPlayer{
		Rel: "user",
		ID:  users[g.rng.Intn(len(users))].ID,
	}
}

// formatDurationMS renders milliseconds as the upstream ISO-8601 style
// duration string, e.g. "PT1H2M3.450S".
func formatDurationMS(ms uint64) string {
	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	seconds := ms / 1_000
	ms %= 1_000

	out := "PT"
	if hours > 0 {
		out += fmt.Sprintf("%dH", hours)
	}
	if minutes > 0 {
		out += fmt.Sprintf("%dM", minutes)
	}
	if ms > 0 {
		return out + fmt.Sprintf("%d.%03dS", seconds, ms)
	}
	return out + fmt.Sprintf("%dS", seconds)
}
