package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runindex/runindex/internal/adapters/snapshot"
	"github.com/runindex/runindex/pkg/logger"
)

const dirPermission = 0o750

// extensions maps a Config.Compression value to the snapshot file suffix.
var extensions = map[string]string{
	"":     ".ndjson",
	"none": ".ndjson",
	"gzip": ".ndjson.gz",
	"xz":   ".ndjson.xz",
}

// Write generates a snapshot and writes it under cfg.OutputDir as one file
// per record kind.
func Write(ctx context.Context, cfg *Config) error {
	ext, ok := extensions[cfg.Compression]
	if !ok {
		return fmt.Errorf("compression %q: %w", cfg.Compression, ErrBadCompression)
	}
	if err := os.MkdirAll(cfg.OutputDir, dirPermission); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	games, users, runs := newGenerator(cfg).Generate()

	if err := writeFile(cfg.OutputDir, "games"+ext, games); err != nil {
		return err
	}
	if err := writeFile(cfg.OutputDir, "users"+ext, users); err != nil {
		return err
	}
	if err := writeFile(cfg.OutputDir, "runs"+ext, runs); err != nil {
		return err
	}

	logger.Get().Info(ctx, "snapshot generated",
		logger.String("dir", cfg.OutputDir),
		logger.Int("games", len(games)),
		logger.Int("users", len(users)),
		logger.Int("runs", len(runs)))
	return nil
}

// writeFile marshals each record to one NDJSON line.
func writeFile[T any](dir, name string, records []T) error {
	w, err := snapshot.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			_ = w.Close()
			return fmt.Errorf("marshal %s record: %w", name, err)
		}
		if err := snapshot.WriteLine(w, line); err != nil {
			_ = w.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}
