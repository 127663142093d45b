package polish

import (
	"errors"
	"fmt"
)

// ErrIncompleteConfig is returned by Start when the supplied SessionConfig
// is missing required fields. The resolver reports which fields; by the time
// a config reaches the controller this is a caller bug.
var ErrIncompleteConfig = errors.New("polish: incomplete session config")

// TransportError is a non-success response from the polish endpoint.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("polish endpoint returned %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("polish endpoint returned %d", e.StatusCode)
}

// DecodeError is a malformed byte stream: bytes that can never form valid
// UTF-8 no matter what the server sends next. Offset is the position of the
// first offending byte within the response body.
type DecodeError struct {
	Offset int64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed UTF-8 in response stream at byte %d", e.Offset)
}
