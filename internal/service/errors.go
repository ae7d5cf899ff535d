package service

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrNotFound indicates a missing list.
	ErrNotFound = errors.New("not found")

	// ErrOutOfRange indicates an item index outside the current bounds.
	ErrOutOfRange = errors.New("out of range")

	// ErrAlreadyExists is informational: createList on an existing name.
	ErrAlreadyExists = errors.New("already exists")

	// ErrProtected indicates an attempt to delete the default list.
	ErrProtected = errors.New("protected")

	// ErrInvalidArgument indicates a blank name or label.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error carries a user-facing message and one of the error kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ListNotFound reports a missing list.
func ListNotFound(name string) error {
	return Errorf(ErrNotFound, "list not found: %s", name)
}

// IndexOutOfRange reports an index outside [0, length).
func IndexOutOfRange(index, length int) error {
	return Errorf(ErrOutOfRange, "index out of range: %d (list has %d items)", index, length)
}
