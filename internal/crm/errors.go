package crm

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Provider failures are fatal for the calling
// operation: there is no retry, no backoff, and no distinction between
// transient and permanent provider errors.
var (
	// ErrUnknownProvider is returned for provider tags outside the
	// supported set. Rejected at the boundary before the core runs.
	ErrUnknownProvider = errors.New("unknown CRM provider")

	// ErrNotConnected means no OAuth connection is stored for the
	// (user, provider) pair. A precondition failure, never retried and
	// never silently creating a connection.
	ErrNotConnected = errors.New("no CRM connection for user")

	// ErrMissingID is returned when an update is attempted without the
	// provider-native record id.
	ErrMissingID = errors.New("record id is required for update")

	// ErrNoFields is returned when an update carries no fields to send.
	ErrNoFields = errors.New("no fields to update")
)

// RequestError is any non-2xx response from a provider HTTP call,
// OAuth or CRM. It is propagated to the caller as-is.
type RequestError struct {
	Provider   Provider
	Operation  string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Body)
}

// MalformedResponseError means a provider response decoded cleanly but
// is missing a field the contract requires (id on create, access_token
// on token exchange).
type MalformedResponseError struct {
	Provider Provider
	Missing  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s response missing %s", e.Provider, e.Missing)
}

// IsInvalidInput reports whether err is a caller-level validation
// failure detected before any network call.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrUnknownProvider) ||
		errors.Is(err, ErrMissingID) ||
		errors.Is(err, ErrNoFields)
}
