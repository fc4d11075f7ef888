package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTransport   = errors.New("remote store unreachable")
	ErrRejected    = errors.New("rejected by remote store")
	ErrUnavailable = errors.New("remote store unavailable")
)

// StatusError is returned when the store answers with a status other than the
// one the operation expects.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRejected
}

// ServerFault reports whether the store failed on its side (5xx).
func (e *StatusError) ServerFault() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
