package daw

import "errors"

// Error kinds. Packages wrap these with context; match with errors.Is.
var (
	// ErrNotFound is returned when a referenced track, clip or effect does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned for transport or lifecycle transitions that
	// are not allowed from the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidRange is returned when a time range or index lies outside the
	// bounds of its source.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidParameter is returned when a value is rejected by validation.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrResourceExhausted is returned when a bounded resource such as the
	// buffer pool cannot satisfy a request.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrIntegrationFailure is returned when the host environment cannot
	// provide what the engine needs (unsupported sample rate, driver failure).
	ErrIntegrationFailure = errors.New("integration failure")
)
