package journal

import (
	"errors"
)

var (
	ErrTruncated     = errors.New("journal truncated mid record")
	ErrMalformed     = errors.New("malformed journal data")
	ErrOutOfRange    = errors.New("dictionary index out of range")
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// Status reduces a decode error to the label used in per-journal logs.
// Failures from the byte source or the decompressor classify as
// io_error; recovery policy is the same as truncation.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrUnknownOpcode):
		return "unknown_opcode"
	case errors.Is(err, ErrTruncated):
		return "truncated"
	default:
		return "io_error"
	}
}
