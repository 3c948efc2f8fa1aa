package collections

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by sources and raised by registers.
var (
	// ErrNilArgument is matched by every [ArgumentError].
	ErrNilArgument = errors.New("collections: required argument is nil")

	// ErrIndexOutOfRange is returned when a position does not address the
	// list it is applied to.
	ErrIndexOutOfRange = errors.New("collections: index out of range")

	// ErrUnknownChangeKind is raised when a source publishes an event whose
	// kind is not one of the five defined [ChangeKind] values.
	ErrUnknownChangeKind = errors.New("collections: unknown change kind")

	// ErrReentrantMutation is returned when a list is mutated from inside
	// one of its own change handlers.
	ErrReentrantMutation = errors.New("collections: list mutated while notifying subscribers")
)

// ArgumentError reports a required constructor argument that was nil.
type ArgumentError struct {
	Name string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("collections: argument %q must not be nil", e.Name)
}

// Unwrap makes errors.Is(err, ErrNilArgument) hold.
func (e *ArgumentError) Unwrap() error { return ErrNilArgument }
