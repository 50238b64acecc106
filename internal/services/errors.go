// Package services defines the business logic for the chatbot knowledge
// base: tag lifecycle, phrase reconciliation, queries, and matching. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrTagNotFound indicates that no tag exists for the given id or name.
	ErrTagNotFound = errors.New("tag not found")

	// ErrTagExists is returned by the strict-create path when the tag name
	// is already taken, regardless of owner.
	ErrTagExists = errors.New("tag already exists")

	// ErrEmptyInput is returned when a match request carries an empty or
	// whitespace-only input string.
	ErrEmptyInput = errors.New("input is empty")

	// ErrInvalidPayload is returned when a tag payload fails shape checks
	// (empty tag name, missing phrase arrays, or blank phrase entries).
	// Payload validation always happens before any store access.
	ErrInvalidPayload = errors.New("invalid tag payload")

	// ErrStoreTimeout is returned when a store operation exceeds its
	// configured deadline. Partially applied writes are never retried.
	ErrStoreTimeout = errors.New("store operation timed out")
)
