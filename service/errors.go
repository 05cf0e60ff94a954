package services

import "errors"

// Sentinel errors for the requirement and review engine. Callers branch on
// these with errors.Is to map business failures onto distinct HTTP statuses.
var (
	// ErrNotFound covers missing documents, reviews, plans, and unknown
	// organization type codes.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers duplicate review creation and out-of-order or
	// repeated submissions.
	ErrConflict = errors.New("conflict")

	// ErrValidation covers structurally invalid input from the caller.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration covers ambiguous policy data, e.g. an overlay that
	// references a document type no base plan defines without marking it
	// REQUIRED.
	ErrConfiguration = errors.New("configuration error")
)
