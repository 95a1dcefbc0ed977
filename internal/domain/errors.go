package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidQuality is returned when a quality rating is outside [0,5].
	// Ratings are never clamped; the caller must surface this error.
	ErrInvalidQuality = errors.New("quality rating must be between 0 and 5")

	// ErrUnknownCard is returned when a card id is not part of the catalog.
	// Classification ignores such ids; services addressing one return it.
	ErrUnknownCard = errors.New("unknown card")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)
