package domain

import "errors"

var (
	// ErrPrimaryUnavailable means the primary venue snapshot could not be
	// fetched. It is the one fatal input condition: without it there is
	// nothing to classify and the run must abort with a non-zero exit.
	ErrPrimaryUnavailable = errors.New("primary venue unavailable")

	// ErrBaselineMissing means no persisted baseline exists yet.
	ErrBaselineMissing = errors.New("baseline missing")

	// ErrBaselineCorrupt means the persisted baseline could not be decoded;
	// it is treated the same as missing.
	ErrBaselineCorrupt = errors.New("baseline corrupt")
)
