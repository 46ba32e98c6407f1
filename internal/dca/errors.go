package dca

import "errors"

// Failure taxonomy for the fitting engine. Callers match with errors.Is;
// wrapped messages carry the well identifier and offending values.
var (
	// ErrInvalidSample marks a non-finite or non-positive value where
	// positivity is required. Never silently coerced to zero.
	ErrInvalidSample = errors.New("invalid sample")

	// ErrInsufficientHistory marks too few flowing samples for a requested
	// fit or split.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrFitFailure marks optimizer non-convergence, a parameter-bound
	// violation, or an exceeded iteration cap.
	ErrFitFailure = errors.New("fit failure")
)
