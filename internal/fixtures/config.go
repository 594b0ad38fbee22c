// Package fixtures generates deterministic raw snapshot files for local
// development and load testing. The records it emits have the same shape as
// the upstream export, so they exercise the full normalize and build path.
package fixtures

// Default generation sizes.
const (
	defaultGames        = 5
	defaultUsers        = 200
	defaultRunsPerBoard = 25
	defaultSeed         = 1
)

// Config controls the size and shape of a generated snapshot.
type Config struct {
	// OutputDir receives the games/users/runs files.
	OutputDir string

	// Games is the number of game records to generate.
	Games int

	// Users is the number of user records to generate.
	Users int

	// RunsPerBoard is the number of runs generated for each board, where a
	// board is a per-game category or a per-level category and level pair.
	RunsPerBoard int

	// Seed drives the generator. The same seed always yields the same
	// snapshot bytes.
	Seed int64

	// Compression selects the file format: "none", "gzip" or "xz".
	Compression string
}

// DefaultConfig returns a Config sized for a quick local import.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:    "snapshot",
		Games:        defaultGames,
		Users:        defaultUsers,
		RunsPerBoard: defaultRunsPerBoard,
		Seed:         defaultSeed,
		Compression:  "none",
	}
}
