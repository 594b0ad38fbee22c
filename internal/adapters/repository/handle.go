package repository

import "sync/atomic"

// Handle is the single swappable reference to the live database. A refreshed
// import builds an entirely new Database and swaps it in atomically;
// in-flight queries against the old instance keep working to completion.
// There is no update-in-place.
type Handle struct {
	current atomic.Pointer[Database]
}

// NewHandle returns a handle with no database loaded yet.
func NewHandle() *Handle {
	return &Handle{}
}

// Current returns the live database, or nil before the first successful
// build.
func (h *Handle) Current() *Database {
	return h.current.Load()
}

// Swap publishes db as the live database and returns the previous one, if
// any.
func (h *Handle) Swap(db *Database) *Database {
	return h.current.Swap(db)
}
