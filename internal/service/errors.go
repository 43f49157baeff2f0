package service

import "errors"

// Error taxonomy for the orchestration core. Handlers classify these at
// the boundary; validation and ownership failures are rejected with zero
// mutation.
var (
	// ErrUnauthenticated means no resolved identity was supplied.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the identity is valid but lacks ownership or role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the token, session, exam or task is absent.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest means missing fields or an out-of-range value.
	ErrBadRequest = errors.New("bad request")
	// ErrConflict means a duplicate session or registration attempt.
	ErrConflict = errors.New("conflict")
	// ErrUpstream means the execution service failed; session state is
	// untouched and the caller may retry.
	ErrUpstream = errors.New("upstream failure")
	// ErrTimedOut means the execution service exceeded its deadline;
	// like ErrUpstream, state is untouched.
	ErrTimedOut = errors.New("upstream timeout")
)
