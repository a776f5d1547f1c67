package oerror

import "fmt"

// OomphError is the error raised when an invariant inside the engine is violated. It always
// points at a bug in the caller or in a collaborator, never at an ordinary geometric edge case.
type OomphError struct {
	Err string
}

// New creates a new OomphError with a formatted message.
func New(format string, args ...any) *OomphError {
	return &OomphError{Err: fmt.Sprintf(format, args...)}
}

func (e *OomphError) Error() string {
	return e.Err
}
