package gateway

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested entity does not exist on the backend.
var ErrNotFound = errors.New("not found")

// NetworkError indicates the request never produced an HTTP response:
// the backend was unreachable or the fixed per-call timeout elapsed.
type NetworkError struct {
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("network error: timeout: %v", e.Err)
	}
	return fmt.Sprintf("network error: unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is any non-2xx HTTP response, normalized to a status code and
// a message taken from the response body when one is present.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTimeout reports whether err is a network timeout.
func IsTimeout(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Timeout
}
