package snapshot

import (
	"errors"
)

// Sentinel kinds for snapshot errors.
var (
	ErrNoSnapshot  = errors.New("no snapshot files found")
	ErrLineTooLong = errors.New("snapshot line exceeds maximum length")
	ErrBadArchive  = errors.New("snapshot archive is corrupt")
)
