package store

import "fmt"

// ErrorKind classifies storage failures so handlers can map them to a
// response without string matching.
type ErrorKind string

const (
	ErrKindQuery ErrorKind = "QUERY_ERROR"
	ErrKindScan  ErrorKind = "SCAN_ERROR"
)

// Error is a structured storage error with a kind and a message,
// distinguishable from a successful empty result.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func queryError(message string, err error) *Error {
	return &Error{Kind: ErrKindQuery, Message: message, Err: err}
}

func scanError(message string, err error) *Error {
	return &Error{Kind: ErrKindScan, Message: message, Err: err}
}
