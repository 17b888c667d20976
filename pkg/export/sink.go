package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/prequel-dev/prequel-frozen/pkg/journal"

	"github.com/goccy/go-json"
)

const defFlushSize = 1 << 20

// SinkI receives decoded events. Close flushes anything buffered, so
// events written before a journal failure are retained.
type SinkI interface {
	Write(ev journal.Event) error
	Close() error
}

// jsonlSinkT serializes each event as one JSON object per line.
// Lines accumulate in memory and flush once the estimated batch size
// crosses flushSz.
type jsonlSinkT struct {
	wtr     io.WriteCloser
	buf     bytes.Buffer
	sz      int
	flushSz int
}

func NewJsonlSink(wtr io.WriteCloser) SinkI {
	return &jsonlSinkT{
		wtr:     wtr,
		flushSz: defFlushSize,
	}
}

func (s *jsonlSinkT) Write(ev journal.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("fail marshal event: %w", err)
	}

	s.buf.Write(data)
	s.buf.WriteByte('\n')

	if s.sz += ev.Size(); s.sz >= s.flushSz {
		return s.flush()
	}
	return nil
}

func (s *jsonlSinkT) flush() error {
	if s.buf.Len() == 0 {
		return nil
	}

	if _, err := s.wtr.Write(s.buf.Bytes()); err != nil {
		return fmt.Errorf("fail sink write: %w", err)
	}

	s.buf.Reset()
	s.sz = 0
	return nil
}

func (s *jsonlSinkT) Close() error {
	if err := s.flush(); err != nil {
		s.wtr.Close()
		return err
	}
	return s.wtr.Close()
}

type nopWriteCloserT struct {
	io.Writer
}

func (nopWriteCloserT) Close() error {
	return nil
}

// NopWriteCloser wraps a writer whose lifetime the sink does not own,
// e.g. stdout for the console sink.
func NopWriteCloser(wtr io.Writer) io.WriteCloser {
	return nopWriteCloserT{wtr}
}
