package gateway

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is a 401 outside the auth paths: the bearer token is
	// no longer accepted and the session must be torn down.
	ErrUnauthorized = errors.New("gateway: unauthorized")

	// ErrInvalidCredentials is a 401 on an auth path; a failed login, not a
	// session expiry.
	ErrInvalidCredentials = errors.New("gateway: invalid credentials")

	// ErrForbidden is a 403: authenticated but not permitted. The UI shows a
	// generic notice; no attempt is made to infer which permission was
	// missing.
	ErrForbidden = errors.New("gateway: forbidden")
)

// NetworkError wraps a transport failure (no response received). Surfaced as
// a generic connectivity notice; never retried automatically.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gateway: request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 5xx. Surfaced as a generic "try again later" notice.
type ServerError struct {
	Status int
	URL    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("gateway: server error %d from %s", e.Status, e.URL)
}

// ValidationError carries field-level errors from a 422 response. It is
// propagated to the originating form for per-field display rather than shown
// as a generic toast.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("gateway: validation failed: %s", e.Message)
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("gateway: validation failed on %s", strings.Join(names, ", "))
}

// FieldErrors returns the messages for one form field; nil when the field
// passed validation.
func (e *ValidationError) FieldErrors(field string) []string {
	return e.Fields[field]
}

// StatusError is the fallback for unexpected non-2xx statuses that fit no
// category above (e.g. 404 on a collection route).
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: unexpected status %d from %s", e.Status, e.URL)
}
