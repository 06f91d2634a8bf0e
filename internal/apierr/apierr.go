package apierr

import "errors"

var (
	// ErrValidation covers bad input: invalid proficiency level, missing
	// prerequisite mapping, response text over the character ceiling.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrProvider marks AI completion provider failures and timeouts.
	ErrProvider = errors.New("provider error")
	// ErrConflict marks a lost version race; the caller should re-read and retry.
	ErrConflict = errors.New("concurrency conflict")
)

func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsProvider(err error) bool     { return errors.Is(err, ErrProvider) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
