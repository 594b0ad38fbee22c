package normalize

import (
	"errors"
	"fmt"

	"github.com/runindex/runindex/internal/domain/model"
)

// Sentinel kinds for normalization errors. All are recoverable per-record:
// the import pipeline counts and reports them without aborting the batch.
var (
	// ErrNoNames means no usable display name among the ordered candidates.
	ErrNoNames = errors.New("no usable display name")

	// ErrInvalidID wraps a base-36 decode failure on an upstream identifier.
	ErrInvalidID = errors.New("invalid upstream id")

	// ErrCategoryType means an embedded category declared an unknown per kind.
	ErrCategoryType = errors.New("unknown category type")

	// ErrTimingMethod means a game's ruleset named an unknown default timing.
	ErrTimingMethod = errors.New("unknown timing method")

	// ErrPlayerRel means a run participant was neither a user reference nor a
	// guest.
	ErrPlayerRel = errors.New("unknown player rel")

	// ErrDuration means a measured duration string was not parseable.
	ErrDuration = errors.New("malformed duration")

	// ErrDate means a run's performed date was not a calendar date.
	ErrDate = errors.New("malformed date")
)

// ValidationError reports that a successfully constructed entity failed its
// own field validation. This indicates a normalizer bug rather than bad
// input, so importers log it loudly, but it still must not abort the rest of
// a bulk import.
type ValidationError struct {
	Kind       model.Kind
	ID         uint64
	Violations []model.Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("normalized %s %d failed validation: %v", e.Kind, e.ID, e.Violations)
}
