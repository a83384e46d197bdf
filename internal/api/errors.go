// Package api wraps every outbound REST call with bearer-token attachment
// and a one-shot refresh-and-retry cycle on authorization failure.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAuthRequired is returned when the session cannot be refreshed and the
// user has been sent back to the login surface.  Callers should stop their
// current flow; the navigation side effect has already happened.
var ErrAuthRequired = errors.New("authentication required")

// Error carries the HTTP status and the backend's message for a non-OK
// response.  Use errors.As to branch on the status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// newError builds an Error from a response body, preferring the backend's
// message field and falling back to a generic status-coded message.  The
// backend emits either {"message": ...} or {"error": ...} depending on the
// service.
func newError(status int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return &Error{Status: status, Message: payload.Message}
		}
		if payload.Err != "" {
			return &Error{Status: status, Message: payload.Err}
		}
	}
	return &Error{Status: status, Message: fmt.Sprintf("request failed with status %d", status)}
}
