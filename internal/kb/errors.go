package kb

import (
	"errors"
	"fmt"
)

// RejectedError is returned when the backend answers with success=false.
// Message is the server-supplied error string, verbatim.
type RejectedError struct {
	Op      string
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: rejected by backend (status %d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// IsRejected reports whether err is a backend rejection and returns the
// server message.
func IsRejected(err error) (string, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Message, true
	}
	return "", false
}
