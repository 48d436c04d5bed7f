package finding

import "errors"

// Sentinel errors for check failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrCheckFailed marks a Result whose check could not complete. The
	// underlying network error is wrapped alongside it.
	ErrCheckFailed = errors.New("finding: check failed")

	// ErrNotFetched marks a Result whose target answered with a non-200
	// status, so there was nothing to inspect.
	ErrNotFetched = errors.New("finding: target not fetched")

	// ErrUnknownCategory is returned when a category name is not one of
	// the seven fixed categories.
	ErrUnknownCategory = errors.New("finding: unknown category")
)
