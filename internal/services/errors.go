// Package services defines the business logic for accounts, avatars, chat
// turns, and the mood ledger. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrValidation is returned when a request is missing a required field
	// or carries a malformed value.
	ErrValidation = errors.New("missing or invalid field")

	// ErrDuplicateUser indicates the username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")

	// ErrInvalidCredentials is returned when the login id or password does
	// not match a known account.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrAvatarNotFound indicates the requested avatar does not exist or is
	// not owned by the caller. The two cases are deliberately not
	// distinguished so callers cannot probe for other users' resources.
	ErrAvatarNotFound = errors.New("avatar not found")

	// ErrProfileNotFound indicates the caller has no profile row.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrEmptyMessage is returned when a chat turn carries an empty message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNoMessagesForDay is returned by mood inference when the user wrote
	// nothing on the requested day.
	ErrNoMessagesForDay = errors.New("no messages that day")

	// ErrMoodNotFound indicates no mood entry exists for the requested day.
	ErrMoodNotFound = errors.New("no mood recorded for that day")
)
