package wallabag

import "fmt"

// AuthError indicates the server rejected the credentials or the token
// request shape. It is fatal to a sync run.
type AuthError struct {
	Code        int    // HTTP status code, 0 when the failure is not HTTP-level
	Err         string // machine-readable error from the oauth payload
	Description string // human-readable description from the oauth payload
}

func (e *AuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("authentication failed: %s", e.Description)
	}
	if e.Err != "" {
		return fmt.Sprintf("authentication failed: %s", e.Err)
	}
	return fmt.Sprintf("authentication failed: status %d", e.Code)
}

// FetchError indicates a non-success response or malformed payload from
// the entries endpoint. It is fatal to a sync run.
type FetchError struct {
	Code   int
	Reason string
}

func (e *FetchError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("fetch entries failed: status %d: %s", e.Code, e.Reason)
	}
	return fmt.Sprintf("fetch entries failed: %s", e.Reason)
}
