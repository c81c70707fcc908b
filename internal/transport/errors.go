package transport

import "fmt"

// TransportError is a network or HTTP failure after the local retry budget
// is spent. The response body, if any, must not be assumed well-formed.
// Callers may retry the whole operation later.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BlockedError means the catalog served an anti-bot challenge and the one
// automated solve pass did not clear it. Retrying immediately deepens the
// lockout; callers should wait before trying again.
type BlockedError struct {
	StatusCode int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked by catalog anti-bot challenge (status %d)", e.StatusCode)
}
