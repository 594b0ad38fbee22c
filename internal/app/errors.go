package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotFound means a slug or token resolved to no row in the live
	// database.
	ErrNotFound = errors.New("not found")

	// ErrNotReady means no database has been built yet.
	ErrNotReady = errors.New("database not ready")

	// ErrUnknownPolicy means a duplicate policy name did not match any
	// registered policy.
	ErrUnknownPolicy = errors.New("unknown duplicate policy")
)
