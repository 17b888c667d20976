package journal

import (
	"strings"

	"github.com/tinylib/msgp/msgp"
)

// Conventional metadata keys carried in event records. A host, source,
// or sourcetype entry overrides the active dictionary value for that
// event only; a _raw entry replaces the trailing message bytes.
const (
	metaKeyRaw        = "_raw"
	metaKeyHost       = "host"
	metaKeySource     = "source"
	metaKeySourcetype = "sourcetype"
)

// Event is one decoded journal record. Field order matches the JSONL
// contract consumed downstream; do not reorder.
type Event struct {
	Host         string `json:"host"`
	Source       string `json:"source"`
	Sourcetype   string `json:"sourcetype"`
	IndexTime    uint64 `json:"index_time"`
	Message      string `json:"message"`
	StreamID     uint64 `json:"stream_id"`
	StreamOffset uint64 `json:"stream_offset"`
}

// Uses msgpack size as an estimate of the serialized footprint; not
// exactly the JSONL byte count, but close enough for sink flush
// accounting.
func (z Event) Size() (s int) {
	s = 1 +
		2 + msgp.StringPrefixSize + len(z.Host) +
		2 + msgp.StringPrefixSize + len(z.Source) +
		2 + msgp.StringPrefixSize + len(z.Sourcetype) +
		2 + msgp.Uint64Size +
		2 + msgp.StringPrefixSize + len(z.Message) +
		2 + msgp.Uint64Size +
		2 + msgp.Uint64Size
	return
}

// Message bytes are not guaranteed UTF-8. Replace invalid sequences
// rather than fail the event; frozen logs are a forensic artifact and
// dropping an event over encoding loses data.
func lossyString(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
