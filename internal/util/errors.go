package util

import "errors"

// Sentinel errors for the failure modes named in the error handling policy.
var (
	// ErrInputNotFound indicates a missing source/destination directory or plan file.
	ErrInputNotFound = errors.New("input not found")

	// ErrInvalidPlan indicates a plan document missing its root element or directories.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrIOError indicates a read/hash/copy failure against the filesystem.
	ErrIOError = errors.New("io error")

	// ErrMalformedEntry indicates a partial copy entry found by the verifier.
	ErrMalformedEntry = errors.New("malformed entry")
)
