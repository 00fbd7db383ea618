package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// AuthenticationError reports a 401 from an authenticated call. It is
// never retried; the adapter has already cleared the session and fired
// the unauthorized hook by the time a caller sees it.
type AuthenticationError struct {
	Endpoint string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication required: %s", e.Endpoint)
}

// NotFoundError reports a 404 on a single-resource fetch, so the caller
// can render "not found" rather than "error".
type NotFoundError struct {
	Endpoint string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Endpoint)
}

// ValidationError carries a structured field → message payload from a
// 4xx response, so forms can highlight specific inputs.
type ValidationError struct {
	Endpoint string
	Fields   map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: %s", e.Endpoint)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("validation failed: %s (%s)", e.Endpoint, strings.Join(parts, "; "))
}

// TimeoutError reports that the client-side request budget elapsed.
// Eligible for bounded retry on idempotent reads only.
type TimeoutError struct {
	Endpoint string
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out: %s: %v", e.Endpoint, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError reports that the request never reached the server
// (refused connection, DNS failure, dropped socket).
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is the fallback bucket for error-status responses that do
// not map to a more specific kind. Message carries the backend's own
// wording when one was present.
type HTTPError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s: %s", e.Status, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Endpoint)
}

// retryable reports whether an error is eligible for the adapter's
// bounded retry. Only transport-level failures qualify; error-status
// responses are answers, not transport faults.
func retryable(err error) bool {
	var te *TimeoutError
	var ne *NetworkError
	return errors.As(err, &te) || errors.As(err, &ne)
}

// Classify returns a normalized error type name suitable for tagging
// logs. It unwraps errors until the innermost concrete type is found
// and converts it to snake_case-ish.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
