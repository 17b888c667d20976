package journal

import (
	"fmt"
)

// Event record flags byte, bit 0: extended headers present.
const flagExtHeaders = 0x01

// windowT is a cursor over a fully-buffered event record. The length
// prefix isolates the record from the opcode stream, so only a
// sub-field length that crosses the end of the window is malformed;
// clean exhaustion at a field boundary reads as zero. That keeps a
// zero-length record a valid, empty event, and an under-read simply
// leaves trailing bytes to become the message.
type windowT struct {
	buf []byte
	off int
}

func (w *windowT) u8() byte {
	if w.off >= len(w.buf) {
		return 0
	}
	b := w.buf[w.off]
	w.off++
	return b
}

func (w *windowT) uvarint() (uint64, error) {
	if w.off >= len(w.buf) {
		return 0, nil
	}

	v, n := uvarint(w.buf[w.off:])
	if n <= 0 {
		// Truncated here means the varint continues past the end of
		// the window; the record framing is violated either way.
		return 0, fmt.Errorf("%w: bad varint in event window", ErrMalformed)
	}
	w.off += n
	return v, nil
}

func (w *windowT) lpBytes() ([]byte, error) {
	length, err := w.uvarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(len(w.buf)-w.off) {
		return nil, fmt.Errorf("%w: length prefix %d crosses event window", ErrMalformed, length)
	}

	data := w.buf[w.off : w.off+int(length)]
	w.off += int(length)
	return data, nil
}

// rest returns the unconsumed remainder of the window.
func (w *windowT) rest() []byte {
	return w.buf[w.off:]
}

// skipHeaders consumes the extended header block: (key varint, value
// lp-bytes) pairs, terminated by a key of 0. Header contents are
// retained for framing only, never surfaced.
func (w *windowT) skipHeaders() error {
	for {
		key, err := w.uvarint()
		if err != nil {
			return err
		}
		if key == 0 {
			return nil
		}
		if _, err = w.lpBytes(); err != nil {
			return err
		}
	}
}
