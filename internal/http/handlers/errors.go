// Package-level error codes returned inside the ErrorResponse envelope.
//
// Codes are lowercase snake_case and stable: clients branch on them for
// programmatic error handling, while the accompanying message stays free to
// change. Generic codes mirror HTTP status semantics; domain codes cover
// business failures the status alone cannot convey.

package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeEmptyMessage  = "empty_message"
	ErrCodeNoMessages    = "no_messages_for_day"
	ErrCodeInvalidLogin  = "invalid_credentials"
	ErrCodeDuplicateUser = "user_exists"
)
