// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// These symbolic constants are mapped to HTTP responses via the fail()
// helper and give clients a stable, machine-readable taxonomy alongside the
// human-readable message. Generic codes mirror common HTTP status semantics;
// domain-specific codes carry the failure class of the generation pipeline.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeQuotaExceeded    = "quota_exceeded"
	ErrCodeQuotaUnavailable = "quota_unavailable"
	ErrCodeUpstream         = "upstream_error"
	ErrCodeUsageFailed      = "usage_failed"
)
