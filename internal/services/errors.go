// Package services defines the business logic for quota tracking and message
// generation. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

// Validation errors. The validator returns the first rule that fails.
var (
	// ErrInvalidMessageType is returned when messageType is absent or not
	// one of "email" / "chat".
	ErrInvalidMessageType = errors.New("messageType must be \"email\" or \"chat\"")

	// ErrEmptyPrompt is returned when userPrompt is empty after trimming
	// whitespace.
	ErrEmptyPrompt = errors.New("userPrompt is required")

	// ErrInvalidTone is returned when tone is absent or outside the allowed
	// set.
	ErrInvalidTone = errors.New("tone must be one of: professional, casual, romantic, confident, neutral")

	// ErrInvalidStyle is returned when a chat request carries no style or a
	// style outside the allowed set.
	ErrInvalidStyle = errors.New("style must be \"single\" or \"sentence-by-sentence\" for chat messages")
)

// Quota and upstream errors.
var (
	// ErrQuotaExceeded indicates the free-tier daily message limit has been
	// reached. It resolves only by waiting for the next UTC day or by a
	// tier upgrade.
	ErrQuotaExceeded = errors.New("daily message limit reached")

	// ErrQuotaUnavailable indicates the usage store failed. Free-tier
	// requests are denied rather than generated, so a broken counter can
	// never grant unbounded usage.
	ErrQuotaUnavailable = errors.New("usage store unavailable")

	// ErrUpstream indicates the external model call failed or timed out.
	// The call is never retried automatically; clients may retry manually.
	ErrUpstream = errors.New("upstream generation failed")
)
