package client

import (
	"errors"
	"fmt"
	"time"
)

// Common errors returned by the client.
var (
	// ErrSessionClosed is returned by any call on a closed session.
	ErrSessionClosed = errors.New("the session is closed")

	// ErrNotFound is returned when the service has no rows for the query.
	ErrNotFound = errors.New("no data matched the query")

	// ErrAPIKeyMissing is returned by New when no API key is configured.
	ErrAPIKeyMissing = errors.New("api key is required")

	// ErrMalformedEnvelope is returned when a 200 response matches neither envelope shape.
	ErrMalformedEnvelope = errors.New("malformed response envelope")

	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled marks a retry backoff cut short by the context. It is
	// wrapped inside the *ServiceUnavailableError that Get returns.
	ErrContextCancelled = errors.New("context cancelled")
)

// Result codes reported in the RESULT envelope.
const (
	// CodeOK is the header code of a successful page.
	CodeOK = "INFO-000"

	// CodeNoData means the query matched no rows.
	CodeNoData = "INFO-200"

	// CodeTrafficLimit means the key exhausted its daily quota.
	CodeTrafficLimit = "ERROR-337"
)

// ErrorClass represents a classification of failures for observability.
type ErrorClass string

const (
	// ErrorClassTransport covers network failures and non-200 statuses.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassService covers RESULT envelopes other than no-data.
	ErrorClassService ErrorClass = "service"

	// ErrorClassQuota covers the daily traffic limit.
	ErrorClassQuota ErrorClass = "quota"

	// ErrorClassEnvelope covers undecodable bodies.
	ErrorClassEnvelope ErrorClass = "envelope"
)

// ServiceUnavailableError is a transport-level failure: the request never
// produced a 200 response.
type ServiceUnavailableError struct {
	// URL is the endpoint without query parameters, so the key never leaks.
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *ServiceUnavailableError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("failed to connect to endpoint %s: %v", e.URL, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to connect to endpoint %s: status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("failed to connect to endpoint %s", e.URL)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// Temporary reports that the request may succeed if retried.
func (e *ServiceUnavailableError) Temporary() bool {
	return true
}

// InternalServiceError is a RESULT envelope: the service understood the
// request and rejected it.
type InternalServiceError struct {
	Code    string
	Message string

	// ResetAt is set when the session refused the request locally because
	// the daily quota is exhausted.
	ResetAt time.Time
}

// Error implements the error interface.
func (e *InternalServiceError) Error() string {
	return fmt.Sprintf("[%s]: %s", e.Code, e.Message)
}

// Temporary reports that the request must change before it can succeed.
func (e *InternalServiceError) Temporary() bool {
	return false
}

// IsQuotaExceeded reports whether the error is the daily traffic limit.
func (e *InternalServiceError) IsQuotaExceeded() bool {
	return e.Code == CodeTrafficLimit
}

// Classify returns the error class of err, or "" when err is nil or not a
// fetch failure.
func Classify(err error) ErrorClass {
	var unavailable *ServiceUnavailableError
	var internal *InternalServiceError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unavailable):
		return ErrorClassTransport
	case errors.As(err, &internal):
		if internal.IsQuotaExceeded() {
			return ErrorClassQuota
		}
		return ErrorClassService
	case errors.Is(err, ErrMalformedEnvelope):
		return ErrorClassEnvelope
	default:
		return ""
	}
}

// IsFatal reports whether err aborts a whole fetch. NotFound is the only
// non-fatal outcome.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNotFound)
}
