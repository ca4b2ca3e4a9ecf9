package listing

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput indicates the input is not decompiler output in the expected format.
	ErrMalformedInput = errors.New("malformed listing")

	// ErrUnresolvedFunction indicates a function chunk yielded no usable name.
	ErrUnresolvedFunction = errors.New("unresolved function")
)

// MalformedInputError reports a missing or misplaced structural marker.
type MalformedInputError struct {
	Marker Marker // Marker that is missing or out of order
	Line   int    // 0-based line index, -1 when the marker was not found
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("%s: %s: %s", ErrMalformedInput, e.Marker, e.Reason)
	}
	return fmt.Sprintf("%s: %s at line %d: %s", ErrMalformedInput, e.Marker, e.Line+1, e.Reason)
}

func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

// UnresolvedFunctionError reports a chunk with neither a name annotation nor a boundary address.
type UnresolvedFunctionError struct {
	Start int // 0-based index of the chunk's first line
}

func (e *UnresolvedFunctionError) Error() string {
	return fmt.Sprintf("%s: chunk at line %d has no name annotation and no address", ErrUnresolvedFunction, e.Start+1)
}

func (e *UnresolvedFunctionError) Unwrap() error {
	return ErrUnresolvedFunction
}

func missing(m Marker) error {
	return &MalformedInputError{Marker: m, Line: -1, Reason: "marker not found"}
}
