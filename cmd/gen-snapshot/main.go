// Command gen-snapshot writes a deterministic raw snapshot for local
// development and load testing.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/runindex/runindex/internal/fixtures"
	"github.com/runindex/runindex/pkg/logger"
)

func main() {
	defaults := fixtures.DefaultConfig()
	var (
		outputDir    = flag.String("out", defaults.OutputDir, "Output directory for the snapshot files")
		games        = flag.Int("games", defaults.Games, "Number of games to generate")
		users        = flag.Int("users", defaults.Users, "Number of users to generate")
		runsPerBoard = flag.Int("runs", defaults.RunsPerBoard, "Number of runs per board")
		seed         = flag.Int64("seed", defaults.Seed, "Generator seed; the same seed reproduces the same snapshot")
		compression  = flag.String("compress", defaults.Compression, `File format: "none", "gzip" or "xz"`)
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := &fixtures.Config{
		OutputDir:    *outputDir,
		Games:        *games,
		Users:        *users,
		RunsPerBoard: *runsPerBoard,
		Seed:         *seed,
		Compression:  *compression,
	}

	ctx := context.Background()
	if err := fixtures.Write(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "snapshot generation failed", logger.Error(err))
		os.Exit(1)
	}
}
