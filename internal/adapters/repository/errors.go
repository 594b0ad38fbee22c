package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/runindex/runindex/internal/domain/model"
)

// Sentinel kinds for database construction errors.
var (
	// ErrNoProgress means a clean-build retry removed zero rows. Every
	// reported violation identifies at least one removable row, so this is
	// an internal-logic error, not bad data.
	ErrNoProgress = errors.New("clean build made no progress")
)

// IntegrityKind classifies one integrity violation found during database
// construction.
type IntegrityKind uint8

const (
	// KindIndexing is a structural conflict discovered while building the
	// derived indices; it aborts construction before validation runs.
	KindIndexing IntegrityKind = iota + 1
	// KindForeignKeyMissing is a reference that does not resolve to an
	// existing row of the correct type under the correct game.
	KindForeignKeyMissing
	// KindCheckFailed is a field-validation failure discovered during the
	// database pass, a second line of defense beyond normalization.
	KindCheckFailed
	// KindNonUniqueSlug is a uniqueness-key collision naming every
	// conflicting row.
	KindNonUniqueSlug
	// KindMissingPrimaryTiming is a run without a duration for its game's
	// primary timing method.
	KindMissingPrimaryTiming
)

func (k IntegrityKind) String() string {
	switch k {
	case KindIndexing:
		return "indexing"
	case KindForeignKeyMissing:
		return "foreign_key_missing"
	case KindCheckFailed:
		return "check_failed"
	case KindNonUniqueSlug:
		return "non_unique_slug"
	case KindMissingPrimaryTiming:
		return "missing_primary_timing"
	default:
		return "integrity(?)"
	}
}

// IntegrityError is one violation. Row names the offending row; for
// NonUniqueSlug, Conflicts additionally names every row sharing the
// uniqueness key (Row is the first of them).
type IntegrityError struct {
	Kind       IntegrityKind
	Row        model.RowRef
	Field      string            // set for foreign-key violations
	Conflicts  []model.RowRef    // set for non-unique-slug violations
	Violations []model.Violation // set for check failures
	Detail     string
}

func (e *IntegrityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s %d", e.Kind, e.Row.Kind, e.Row.ID)
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
	}
	if len(e.Conflicts) > 0 {
		fmt.Fprintf(&b, " conflicts with %d rows", len(e.Conflicts)-1)
	}
	if len(e.Violations) > 0 {
		fmt.Fprintf(&b, " violations %v", e.Violations)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

// Rows lists every row implicated by this violation.
func (e *IntegrityError) Rows() []model.RowRef {
	if len(e.Conflicts) > 0 {
		return e.Conflicts
	}
	return []model.RowRef{e.Row}
}

// IntegrityErrors is the exhaustive list collected by one failed
// construction. Construction never fails fast on the first violation.
type IntegrityErrors struct {
	Errors []*IntegrityError
}

func (e *IntegrityErrors) Error() string {
	if len(e.Errors) == 1 {
		return "database construction failed: " + e.Errors[0].Error()
	}
	return fmt.Sprintf("database construction failed with %d integrity errors (first: %s)",
		len(e.Errors), e.Errors[0].Error())
}

// Rows returns the deduplicated union of all implicated rows across all
// violations. Removing every one of them from Tables and rebuilding strictly
// shrinks the row set.
func (e *IntegrityErrors) Rows() []model.RowRef {
	seen := make(map[model.RowRef]struct{})
	var out []model.RowRef
	for _, ie := range e.Errors {
		for _, ref := range ie.Rows() {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out
}
