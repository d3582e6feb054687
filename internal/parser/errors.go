package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedNumber is returned when a field is not valid base-16 or
	// overflows its target width.
	ErrMalformedNumber = errors.New("malformed number")

	// ErrTruncatedRecord is returned when a line has fewer fields than its layout requires.
	ErrTruncatedRecord = errors.New("truncated record")

	// ErrMisalignedEffectList is returned when a status effect tail does not
	// divide into whole triples.
	ErrMisalignedEffectList = errors.New("misaligned effect list")

	// ErrUnknownDirectorCommand is returned for director updates that are not
	// instance state changes.
	ErrUnknownDirectorCommand = errors.New("unknown director command")

	// ErrInvalidMarkerID is returned when a target marker names no known head marker.
	ErrInvalidMarkerID = errors.New("invalid marker id")

	// ErrInvalidMarkerOperation is returned when a target marker operation is
	// not Add, Update or Delete.
	ErrInvalidMarkerOperation = errors.New("invalid marker operation")
)

// FieldError names the field that failed to decode.
type FieldError struct {
	Index int    // position in the field slice handed to the decoder
	Role  string // e.g. "source.id", "effects[3].b"
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %d (%s) %q: %v", e.Index, e.Role, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
