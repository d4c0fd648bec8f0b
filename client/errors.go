package client

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyConverted signals the server rejected a conversion because
// the lead was converted before and its records still exist. Safe to
// treat as terminal: retrying will never succeed.
var ErrAlreadyConverted = errors.New("lead has already been converted and records still exist")

// APIError carries a non-2xx response: status code plus the server's
// error message when the body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// TransportError wraps a failure before any response arrived: network
// down, timeout, DNS. Retryable, unlike an APIError.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// isAlreadyConvertedMessage matches the server's duplicate-conversion
// message. The server has no stable machine code for it, so the message
// text is the contract.
func isAlreadyConvertedMessage(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "already been converted") ||
		strings.Contains(strings.ToLower(msg), "already converted")
}
