// Package apperrors defines the recoverable error kinds surfaced at the
// request boundary: not-found, permission, validation and duplicate. Storage
// uniqueness violations are translated into the duplicate kind rather than
// leaking driver errors.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermission
	KindValidation
	KindDuplicate
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Permission(format string, args ...interface{}) error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(format string, args ...interface{}) error {
	return &Error{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of err, KindUnknown when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
