package journal

import (
	"bufio"
	"fmt"
	"io"
)

const defBufferSize = 64 << 10

// countedReaderT wraps the journal byte source with a buffer and
// tracks the absolute position in the logical stream. The position is
// only used for diagnostics; all framing is length-prefixed.
//
// End of stream is reported distinctly from mid-record exhaustion:
// ReadByte and PeekByte surface io.EOF so the dispatcher can detect a
// clean end of journal, while ReadExact and ReadUvarint map EOF to
// ErrTruncated because they are only ever called inside a record.
type countedReaderT struct {
	rdr *bufio.Reader
	pos int64
}

func newCountedReader(rdr io.Reader) *countedReaderT {
	return &countedReaderT{rdr: bufio.NewReaderSize(rdr, defBufferSize)}
}

func (cr *countedReaderT) Pos() int64 {
	return cr.pos
}

func (cr *countedReaderT) ReadByte() (byte, error) {
	b, err := cr.rdr.ReadByte()
	if err == nil {
		cr.pos++
	}
	return b, err
}

func (cr *countedReaderT) PeekByte() (byte, error) {
	p, err := cr.rdr.Peek(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (cr *countedReaderT) AtEnd() bool {
	_, err := cr.rdr.Peek(1)
	return err == io.EOF
}

// ReadExact fills buf completely or fails with ErrTruncated.
func (cr *countedReaderT) ReadExact(buf []byte) error {
	n, err := io.ReadFull(cr.rdr, buf)
	cr.pos += int64(n)

	switch err {
	case nil:
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		return fmt.Errorf("%w: want %d bytes, got %d", ErrTruncated, len(buf), n)
	}
	return err
}

// ReadUvarint decodes an unsigned varint from the stream.
func (cr *countedReaderT) ReadUvarint() (uint64, error) {
	var (
		x uint64
		s uint
	)
	for i := 0; ; i++ {
		b, err := cr.rdr.ReadByte()
		if err != nil {
			if err == io.EOF {
				return 0, fmt.Errorf("%w: eof mid varint", ErrTruncated)
			}
			return 0, err
		}
		cr.pos++

		if i == maxVarintLen {
			return 0, fmt.Errorf("%w: varint continuation past %d bytes", ErrMalformed, maxVarintLen)
		}
		if b < 0x80 {
			if i == maxVarintLen-1 && b > 1 {
				return 0, fmt.Errorf("%w: varint overflows 64 bits", ErrMalformed)
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
}

// ReadLPBytes reads a varint length then exactly that many bytes.
// Zero length is legal and yields an empty slice. Lengths beyond
// limit are malformed rather than honored.
func (cr *countedReaderT) ReadLPBytes(limit int) ([]byte, error) {
	length, err := cr.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(limit) {
		return nil, fmt.Errorf("%w: length prefix %d exceeds %d", ErrMalformed, length, limit)
	}

	buf := make([]byte, int(length))
	if err = cr.ReadExact(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
