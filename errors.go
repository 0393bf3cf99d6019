package img2grid

import "fmt"

// InvalidEscapedMessage is the text shown when pasted escaped input cannot
// be decoded.
const InvalidEscapedMessage = "Invalid escaped JSON"

// DecodeError reports escaped text that is not a double encoded grid.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", InvalidEscapedMessage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", InvalidEscapedMessage, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IndexError reports a cell coordinate outside the grid.
type IndexError struct {
	X, Y          int
	Width, Height int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("cell (%d,%d) outside %dx%d grid",
		e.X, e.Y, e.Width, e.Height)
}

// PreconditionError reports a caller supplied value that must be positive.
type PreconditionError struct {
	Field string
	Value int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s must be positive, got %d", e.Field, e.Value)
}
