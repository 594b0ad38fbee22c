package fixtures

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrBadCompression = errors.New("unknown compression format")
)
