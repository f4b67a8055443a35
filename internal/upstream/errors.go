package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when the response body is not a valid payload.
	ErrDecode = errors.New("upstream: invalid payload")

	// ErrBodyTooLarge is returned when the response exceeds the size limit.
	ErrBodyTooLarge = errors.New("upstream: response body too large")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Status     string // reason phrase, e.g. "Internal Server Error"
	Body       string // best-effort, possibly truncated
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream HTTP %d %s :: %s", e.StatusCode, e.Status, e.Body)
}
