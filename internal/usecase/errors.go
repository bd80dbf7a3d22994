package usecase

import "errors"

// Error categories surfaced to callers. Per-region and per-flight
// failures are absorbed inside the pipeline and never show up here.
var (
	// ErrInvalidCriteria wraps a criteria validation failure
	ErrInvalidCriteria = errors.New("invalid search criteria")

	// ErrFlightNotFound signals an unknown flight identifier
	ErrFlightNotFound = errors.New("flight not found")

	// ErrInsufficientHistory signals that a flight has too few
	// observations for pattern analysis
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrSearchUnavailable signals that the search record could not be
	// created; the run aborts before any region work starts
	ErrSearchUnavailable = errors.New("search storage unavailable")
)
