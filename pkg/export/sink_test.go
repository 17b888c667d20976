package export

import (
	"bytes"
	"testing"

	"github.com/prequel-dev/prequel-frozen/pkg/journal"
)

const wantLineA = `{"host":"hostA","source":"src/1","sourcetype":"st_1","index_time":10000005,"message":"hello","stream_id":0,"stream_offset":0}` + "\n"

func eventA() journal.Event {
	return journal.Event{
		Host:       "hostA",
		Source:     "src/1",
		Sourcetype: "st_1",
		IndexTime:  10000005,
		Message:    "hello",
	}
}

// Field names and order are a downstream compatibility contract.
func TestJsonlSinkExact(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJsonlSink(NopWriteCloser(&buf))

	if err := sink.Write(eventA()); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	if buf.String() != wantLineA {
		t.Errorf("Expected %q, got %q", wantLineA, buf.String())
	}
}

func TestJsonlSinkBuffersUntilClose(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJsonlSink(NopWriteCloser(&buf))

	for i := 0; i < 10; i++ {
		if err := sink.Write(eventA()); err != nil {
			t.Fatalf("Expected nil error, got %v", err)
		}
	}

	if buf.Len() != 0 {
		t.Errorf("Expected no writes before flush, got %d bytes", buf.Len())
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	if got := bytes.Count(buf.Bytes(), []byte{'\n'}); got != 10 {
		t.Errorf("Expected 10 lines, got %d", got)
	}
}

func TestJsonlSinkFlushThreshold(t *testing.T) {
	var (
		buf  bytes.Buffer
		sink = &jsonlSinkT{wtr: NopWriteCloser(&buf), flushSz: 64}
	)

	if err := sink.Write(eventA()); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if err := sink.Write(eventA()); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	if buf.Len() == 0 {
		t.Errorf("Expected flush once estimate crossed threshold")
	}

	if err := sink.Close(); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if got := bytes.Count(buf.Bytes(), []byte{'\n'}); got != 2 {
		t.Errorf("Expected 2 lines, got %d", got)
	}
}
