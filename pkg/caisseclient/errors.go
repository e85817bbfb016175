package caisseclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies client failures.
type ErrorKind string

const (
	// ValidationError is bad local input. It is never sent to the network.
	ValidationError ErrorKind = "validation"
	// AuthError is a 401 or 403 from the store.
	AuthError ErrorKind = "auth"
	// ServerError is any other non-2xx reply, or a reply that could not be decoded.
	ServerError ErrorKind = "server"
	// NetworkError is a transport failure.
	NetworkError ErrorKind = "network"
)

// Error is returned by every operation in this package.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: ValidationError, Message: fmt.Sprintf(format, args...)}
}

// statusError builds the error for a non-2xx reply, using the store's {"error": ...} body
// when there is one.
func statusError(status int, body []byte) *Error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	kind := ServerError
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = AuthError
	}
	return &Error{Kind: kind, Status: status, Message: msg}
}
