package snapshot

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Create opens a snapshot file for writing, compressing with gzip or xz
// based on the file extension. Used by the fixture generator.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create snapshot %s: %w", path, err)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		return &layeredWriteCloser{Writer: gzip.NewWriter(f), file: f}, nil
	case strings.HasSuffix(path, ".xz"):
		xw, err := xz.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create snapshot %s: %w", path, err)
		}
		return &layeredWriteCloser{Writer: xw, file: f}, nil
	default:
		return f, nil
	}
}

// layeredWriteCloser flushes the compressor before closing the file.
type layeredWriteCloser struct {
	io.Writer
	file *os.File
}

func (l *layeredWriteCloser) Close() error {
	var firstErr error
	if c, ok := l.Writer.(io.Closer); ok {
		if err := c.Close(); err != nil {
			firstErr = err
		}
	}
	if err := l.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// WriteLine writes one NDJSON record followed by a newline.
func WriteLine(w io.Writer, line []byte) error {
	if _, err := w.Write(line); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
