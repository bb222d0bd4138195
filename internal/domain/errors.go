package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when a draft fails the pre-submission checks
// (missing field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrSubmitInFlight is returned when a submit arrives while the same user's
// form is still waiting on the remote insert.
// Handlers should map this to HTTP 409 Conflict.
var ErrSubmitInFlight = errors.New("submission already in progress")

// ErrRemoteUnavailable wraps failures of the remote call itself: transport
// errors, timeouts, undecodable responses. The backend never answered with a
// verdict, so the outcome of the insert is unknown.
var ErrRemoteUnavailable = errors.New("remote data service unavailable")

// ErrUnknownField is returned by ParseField for a name that is not a draft field.
var ErrUnknownField = errors.New("unknown field")

// RemoteError is a failure reported by the backend as a value: the request
// reached the data service and it refused the insert (constraint violation,
// row-level security, bad column). Code is the PostgREST/Postgres error code
// when one is available.
type RemoteError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
