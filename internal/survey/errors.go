package survey

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the input has no header line.
	ErrEmptyInput = errors.New("empty file: no header line")

	// ErrMalformedRow is wrapped by MalformedRowError.
	ErrMalformedRow = errors.New("malformed row")

	// ErrUnknownColumn is returned when a column selector matches no header.
	ErrUnknownColumn = errors.New("column not found")

	// ErrUnknownChart is returned for a chart name other than scatter,
	// heatmap or bar.
	ErrUnknownChart = errors.New("unknown chart kind")

	// ErrLengthMismatch is returned when feature vectors differ in length.
	ErrLengthMismatch = errors.New("feature vectors differ in length")
)

// MalformedRowError describes a data line with fewer fields than headers.
type MalformedRowError struct {
	Line   int // 1-based line number in the trimmed input; the header is line 1
	Fields int // fields found on the line
	Want   int // number of headers
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row at line %d: %d fields, want %d", e.Line, e.Fields, e.Want)
}

func (e *MalformedRowError) Unwrap() error {
	return ErrMalformedRow
}
