package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Machine-readable codes carried by APIError.
const (
	CodeNoToken          = "NO_TOKEN"
	CodeAccountSuspended = "ACCOUNT_SUSPENDED"
	CodeSessionExpired   = "SESSION_EXPIRED"
	CodeNetworkError     = "NETWORK_ERROR"
)

// suspendedMarker is looked for in the message of a 403 body.
const suspendedMarker = "suspended"

// APIError is the single error type returned for failed requests.
//
// Status is zero when no HTTP response was received. Code is either one of
// the Code* constants or whatever code the server supplied.
type APIError struct {
	Message string
	Status  int
	Code    string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches another *APIError by code, so the sentinels below work with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

var (
	ErrNoToken          = &APIError{Code: CodeNoToken, Message: "authentication required"}
	ErrAccountSuspended = &APIError{Code: CodeAccountSuspended, Status: http.StatusForbidden, Message: "account suspended"}
	ErrSessionExpired   = &APIError{Code: CodeSessionExpired, Status: http.StatusUnauthorized, Message: "session expired, please log in again"}
	ErrNetwork          = &APIError{Code: CodeNetworkError, Message: "network error"}

	ErrUnavailable = errors.New("server unavailable")
)

func newNoTokenError() *APIError {
	return &APIError{Code: CodeNoToken, Message: ErrNoToken.Message}
}

func newSessionExpiredError() *APIError {
	return &APIError{Code: CodeSessionExpired, Status: http.StatusUnauthorized, Message: ErrSessionExpired.Message}
}

func newSuspendedError(message string) *APIError {
	if message == "" {
		message = ErrAccountSuspended.Message
	}
	return &APIError{Code: CodeAccountSuspended, Status: http.StatusForbidden, Message: message}
}

func newNetworkError(err error) *APIError {
	return &APIError{Code: CodeNetworkError, Message: fmt.Sprintf("network error: %v", err), Err: err}
}

// ErrorPayload is the error body shape of the backend. Both fields are optional.
type ErrorPayload struct {
	Message *string `json:"message"`
	Code    *string `json:"code"`
}

// parseErrorPayload decodes body as ErrorPayload. ok is false for non-JSON bodies.
func parseErrorPayload(body []byte) (p ErrorPayload, ok bool) {
	if err := json.Unmarshal(body, &p); err != nil {
		return ErrorPayload{}, false
	}
	return p, true
}

func (p ErrorPayload) message() string {
	if p.Message == nil {
		return ""
	}
	return *p.Message
}

func (p ErrorPayload) code() string {
	if p.Code == nil {
		return ""
	}
	return *p.Code
}

// suspensionMessage returns the server message if body signals a suspended
// account. Non-JSON bodies and bodies without a message never do.
func suspensionMessage(body []byte) (string, bool) {
	p, ok := parseErrorPayload(body)
	if !ok {
		return "", false
	}
	msg := p.message()
	if !strings.Contains(strings.ToLower(msg), suspendedMarker) {
		return "", false
	}
	return msg, true
}

// newServerError builds the error for a non-2xx response without auth meaning.
func newServerError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	p, ok := parseErrorPayload(body)
	if ok {
		e.Code = p.code()
	}

	text := string(bytes.TrimSpace(body))
	switch {
	case ok && p.message() != "":
		e.Message = p.message()
	case text != "":
		e.Message = text
	default:
		e.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}
