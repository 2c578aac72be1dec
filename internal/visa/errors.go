package visa

import "fmt"

// ConfigError indicates the client could not establish its authenticated
// channel because credentials or certificate material are missing or
// unreadable. No network call is attempted when this error is returned.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("visa client not configured: %s", e.Reason)
}

// TransportError indicates the remote endpoint could not be reached or the
// response could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("visa api request failed (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError indicates the remote endpoint was reachable but returned an
// application-level error. Message carries the upstream-provided error
// message verbatim when one was present in the response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("visa api error (status %d): %s", e.StatusCode, e.Message)
}
