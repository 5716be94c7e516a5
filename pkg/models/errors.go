package models

import "errors"

// Sentinel errors shared by services and repositories. Handlers map these
// to HTTP statuses.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyApplied indicates a craftsman already has an application
	// for the job, in any state.
	ErrAlreadyApplied = errors.New("already applied to this job")

	// ErrNotAllowed indicates the acting user is not permitted to perform
	// the operation on the target row.
	ErrNotAllowed = errors.New("operation not allowed for this user")

	// ErrInvalidState indicates the target row is not in a state the
	// requested transition accepts.
	ErrInvalidState = errors.New("invalid state for this transition")

	// ErrSelfReview indicates a user tried to review themselves.
	ErrSelfReview = errors.New("cannot review yourself")
)
