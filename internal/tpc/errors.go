package tpc

import (
	"errors"
	"fmt"
)

// ErrUnknownSchema indicates a bundle whose keys match neither the frame
// nor the tensor naming schema. Fatal for that bundle.
var ErrUnknownSchema = errors.New("bundle matches no known key schema")

// IncompleteFrameError indicates a frame group missing one of its three
// required arrays.
type IncompleteFrameError struct {
	Tag     string
	Event   int
	Missing string // full key name of the absent array
}

func (e *IncompleteFrameError) Error() string {
	return fmt.Sprintf("incomplete frame group tag=%q event=%d: missing %q", e.Tag, e.Event, e.Missing)
}

// EmptyFrameError indicates a frame group whose sample array spans zero
// channels.
type EmptyFrameError struct {
	Tag   string
	Event int
}

func (e *EmptyFrameError) Error() string {
	return fmt.Sprintf("frame group tag=%q event=%d has zero channels", e.Tag, e.Event)
}

// RangeError indicates an event index outside [0, Len).
type RangeError struct {
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("event index %d out of range [0, %d)", e.Index, e.Len)
}
