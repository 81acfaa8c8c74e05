package domain

import "errors"

var (
	// ErrNotFound is returned when the canonical entity is missing from its owning service
	ErrNotFound = errors.New("not found")

	// ErrVersionMismatch is returned when a concurrent writer changed an aggregate since it was read
	ErrVersionMismatch = errors.New("aggregate version mismatch")

	// ErrUpstreamUnavailable is returned when a domain service cannot be reached or fails
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidQuery is returned when query input is malformed
	ErrInvalidQuery = errors.New("invalid query")

	// ErrSuperseded is returned when a newer identical request replaced the current one
	ErrSuperseded = errors.New("superseded by a newer identical request")

	// ErrInvalidNotification is returned when a change notification cannot be parsed
	ErrInvalidNotification = errors.New("invalid notification")

	// ErrInvalidTokenKey is returned when a token key cannot be parsed
	ErrInvalidTokenKey = errors.New("invalid token key")
)
