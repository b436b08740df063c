// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Business outcomes form a small closed set; anything else bubbling out of a
// repository or service is an infrastructure fault and stays unclassified.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoUser indicates the referenced owner account does not exist.
	ErrNoUser = errors.New("no such user")

	// ErrLimitExceeded indicates the owner's entry allowance is exhausted.
	ErrLimitExceeded = errors.New("entry allowance exceeded")

	// ErrAlreadyExists indicates a uniqueness constraint prevented an insert.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication. Unknown username and
	// wrong password both map here, indistinguishably.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSession indicates an absent, expired, or orphaned session token.
	ErrNoSession = errors.New("no session")

	// ErrRateLimited indicates a temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrValidation indicates malformed caller-supplied input.
	ErrValidation = errors.New("validation")
)
