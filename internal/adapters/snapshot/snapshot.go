// Package snapshot reads and writes runindex snapshot directories. A snapshot
// is a directory of newline-delimited JSON files, one file per entity kind,
// each optionally compressed with gzip or xz.
package snapshot

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"golang.org/x/sync/errgroup"

	"github.com/runindex/runindex/internal/domain/model"
)

// Line length limit. Runs with many players and long comments stay far
// below this; anything above it is a corrupt archive.
const maxLineBytes = 4 << 20

const scanBufferBytes = 64 << 10

// kindFiles maps each snapshot entity kind to its base file name.
var kindFiles = map[model.Kind]string{ //nolint:gochecknoglobals // static lookup table
	model.KindGame: "games",
	model.KindUser: "users",
	model.KindRun:  "runs",
}

// extensions are probed in order; the first match per kind wins.
var extensions = []string{".ndjson", ".ndjson.gz", ".ndjson.xz"} //nolint:gochecknoglobals // static lookup table

// Set maps entity kinds to the snapshot file holding their records.
type Set map[model.Kind]string

// Discover locates the snapshot files present in dir. A snapshot does not
// need to carry every kind; an empty directory is ErrNoSnapshot.
func Discover(dir string) (Set, error) {
	set := make(Set, len(kindFiles))
	for kind, base := range kindFiles {
		for _, ext := range extensions {
			path := filepath.Join(dir, base+ext)
			if _, err := os.Stat(path); err == nil {
				set[kind] = path
				break
			}
		}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, dir)
	}
	return set, nil
}

// Open opens a snapshot file for reading, transparently decompressing
// gzip and xz archives based on the file extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrBadArchive, path, err)
		}
		return &layeredReadCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrBadArchive, path, err)
		}
		return &layeredReadCloser{Reader: xr, closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

// layeredReadCloser closes the decompressor before the underlying file.
type layeredReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (l *layeredReadCloser) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stream reads path line by line and hands each non-blank line to fn.
// The line slice passed to fn is a private copy and may be retained.
func Stream(ctx context.Context, path string, fn func(line []byte) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, scanBufferBytes), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}
		line := make([]byte, len(raw))
		copy(line, raw)
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("%w: %s", ErrLineTooLong, path)
		}
		return fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return nil
}

// LoadAll streams every file in the snapshot directory concurrently, one
// goroutine per file, calling emit for each record line. emit must be safe
// for concurrent use. The first error cancels the remaining streams.
func LoadAll(ctx context.Context, dir string, emit func(kind model.Kind, line []byte) error) error {
	set, err := Discover(dir)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for kind, path := range set {
		kind, path := kind, path
		g.Go(func() error {
			return Stream(ctx, path, func(line []byte) error {
				return emit(kind, line)
			})
		})
	}
	return g.Wait()
}
