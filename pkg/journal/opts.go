package journal

import (
	"github.com/prequel-dev/prequel-frozen/internal/pkg/pool"
)

const MaxEventSize = pool.MaxRecordSize

type OptT func(*optT)

type optT struct {
	maxEventSz int
}

func parseOpts(opts []OptT) optT {
	o := optT{
		maxEventSz: MaxEventSize,
	}

	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxEventSize bounds the event window the decoder will buffer.
// A record advertising a larger window is treated as malformed.
func WithMaxEventSize(sz int) OptT {
	return func(o *optT) {
		if sz <= 0 || sz > MaxEventSize {
			sz = MaxEventSize
		}
		o.maxEventSz = sz
	}
}
