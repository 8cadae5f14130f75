package query

import "errors"

// CodeNotFound is the code Single reports when no row matched. Call sites
// branch on it to choose between insert and update.
const CodeNotFound = "PGRST116"

// Error is the error half of a response envelope.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Name    string `json:"name,omitempty"`

	err error
}

// NewError builds an envelope error with no underlying cause.
func NewError(name, message string) *Error {
	return &Error{Name: name, Message: message}
}

func (e *Error) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the engine error this envelope carries, if any.
func (e *Error) Unwrap() error { return e.err }

// wrap passes an engine error through with its message untouched.
func wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var qe *Error
	if errors.As(err, &qe) {
		return qe
	}
	return &Error{Message: err.Error(), err: err}
}

func notFound() *Error {
	return &Error{Message: "No record found", Code: CodeNotFound}
}

// IsNotFound reports whether err is the no-row sentinel from Single.
func IsNotFound(err error) bool {
	var qe *Error
	return errors.As(err, &qe) && qe.Code == CodeNotFound
}

const (
	msgConsumed    = "query builder already executed"
	msgMultipleIns = "unsupported filter combination: more than one in() filter on a mutation"
)
