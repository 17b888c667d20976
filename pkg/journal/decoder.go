package journal

import (
	"fmt"
	"io"

	"github.com/prequel-dev/prequel-frozen/internal/pkg/pool"

	"github.com/rs/zerolog/log"
)

// DecoderT decodes one journal byte stream into events. The format is
// stateful: dictionary and base-time opcodes mutate the decode
// context, event opcodes read it. A decoder is single-use and not
// safe for concurrent use; decode journals in parallel with
// independent decoders.
type DecoderT struct {
	rdr    *countedReaderT
	state  stateT
	opts   optT
	buf    *[]byte
	closeF func()
}

// NewDecoder sniffs rdr for a zstd frame and prepares a decoder over
// the logical byte stream. Close must be called when done.
func NewDecoder(rdr io.Reader, opts ...OptT) (*DecoderT, error) {
	stream, closeF, err := openStream(rdr)
	if err != nil {
		return nil, err
	}

	return &DecoderT{
		rdr:    newCountedReader(stream),
		state:  newState(),
		opts:   parseOpts(opts),
		buf:    pool.PoolAlloc(),
		closeF: closeF,
	}, nil
}

// Close releases the pooled event window and any decompressor state.
func (d *DecoderT) Close() {
	if d.buf != nil {
		pool.PoolFree(d.buf)
		d.buf = nil
	}
	if d.closeF != nil {
		d.closeF()
		d.closeF = nil
	}
}

// Pos returns the approximate byte offset into the logical stream,
// for failure diagnostics.
func (d *DecoderT) Pos() int64 {
	return d.rdr.Pos()
}

// Next returns the next event. io.EOF marks a clean end of journal.
// Any other error means the remainder of this journal cannot be
// resynchronized; events returned before the failure are complete and
// correct.
func (d *DecoderT) Next() (Event, error) {
	for {
		op, err := d.rdr.ReadByte()
		if err != nil {
			if err == io.EOF {
				return Event{}, io.EOF
			}
			return Event{}, fmt.Errorf("fail read opcode: %w", err)
		}

		switch {
		case op == opNop:

		case op == opNewHost, op == opNewHostAlt:
			err = d.newString(&d.state.hosts)

		case op == opNewSource:
			err = d.newString(&d.state.sources)

		case op == opNewSourcetype:
			err = d.newString(&d.state.sourcetypes)

		case op == opActiveHost:
			err = d.setActive(&d.state.activeHost, len(d.state.hosts))

		case op == opActiveSource:
			err = d.setActive(&d.state.activeSource, len(d.state.sources))

		case op == opActiveSourcetype:
			err = d.setActive(&d.state.activeSourcetype, len(d.state.sourcetypes))

		case op == opBaseTime:
			var secs uint64
			if secs, err = d.rdr.ReadUvarint(); err == nil {
				d.state.baseTime = secs
				d.state.baseTimeSet = true
			}

		case isReservedStateOp(op):
			// Uninterpreted state opcode; its payload is a single
			// varint which must be consumed to keep the cursor
			// aligned.
			var v uint64
			if v, err = d.rdr.ReadUvarint(); err == nil {
				log.Debug().
					Uint8("opcode", op).
					Uint64("payload", v).
					Msg("Skip reserved state opcode")
			}

		case isEventOp(op):
			return d.parseEvent(op)

		default:
			return Event{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, op)
		}

		if err != nil {
			return Event{}, err
		}
	}
}

func (d *DecoderT) newString(dict *[]string) error {
	data, err := d.rdr.ReadLPBytes(d.opts.maxEventSz)
	if err != nil {
		return err
	}
	*dict = append(*dict, lossyString(data))
	return nil
}

func (d *DecoderT) setActive(idx *int, n int) error {
	v, err := d.rdr.ReadUvarint()
	if err != nil {
		return err
	}
	if v >= uint64(n) {
		return fmt.Errorf("%w: index %d with %d entries", ErrOutOfRange, v, n)
	}
	*idx = int(v)
	return nil
}

// parseEvent reads the length-prefixed event record and composes it
// with the decode context. Record layout inside the window: flags
// byte, optional extended headers, stream id, stream offset, index
// time delta, metadata block, raw message. Unconsumed trailing bytes
// are the message unless a _raw metadata entry supplies it. The whole
// window is read before parsing, so an under-read never
// desynchronizes the stream.
func (d *DecoderT) parseEvent(op byte) (ev Event, err error) {
	sz, err := d.rdr.ReadUvarint()
	if err != nil {
		return
	}
	if sz > uint64(d.opts.maxEventSz) {
		err = fmt.Errorf("%w: event window %d exceeds %d", ErrMalformed, sz, d.opts.maxEventSz)
		return
	}

	win := windowT{buf: (*d.buf)[:sz]}
	if err = d.rdr.ReadExact(win.buf); err != nil {
		return
	}

	if flags := win.u8(); flags&flagExtHeaders != 0 {
		if err = win.skipHeaders(); err != nil {
			return
		}
	}

	if ev.StreamID, err = win.uvarint(); err != nil {
		return
	}
	if ev.StreamOffset, err = win.uvarint(); err != nil {
		return
	}

	var delta uint64
	if delta, err = win.uvarint(); err != nil {
		return
	}
	if !d.state.baseTimeSet {
		err = fmt.Errorf("%w: index time delta with no base time", ErrMalformed)
		return
	}
	ev.IndexTime = d.state.baseTime + delta
	// The base time rolls forward: the next event's delta is taken
	// against this event's index time.
	d.state.baseTime = ev.IndexTime

	// Seed from the active dictionary context; per-event metadata
	// overrides without mutating state.
	ev.Host = d.state.Host()
	ev.Source = d.state.Source()
	ev.Sourcetype = d.state.Sourcetype()

	var (
		raw    []byte
		hasRaw bool
	)

	count, err := win.uvarint()
	if err != nil {
		return
	}
	for i := uint64(0); i < count; i++ {
		var key, val []byte
		if key, err = win.lpBytes(); err != nil {
			return
		}
		if val, err = win.lpBytes(); err != nil {
			return
		}

		switch string(key) {
		case metaKeyHost:
			ev.Host = lossyString(val)
		case metaKeySource:
			ev.Source = lossyString(val)
		case metaKeySourcetype:
			ev.Sourcetype = lossyString(val)
		case metaKeyRaw:
			raw = val
			hasRaw = true
		}
	}

	if !hasRaw {
		raw = win.rest()
	}
	ev.Message = lossyString(raw)

	return ev, nil
}

type ScanFuncT func(ev Event) bool

// Scan decodes rdr to end of journal, handing each event to scanF.
// Scanning stops early when scanF returns true. Returns the number of
// events emitted.
func Scan(rdr io.Reader, scanF ScanFuncT, opts ...OptT) (n int, err error) {
	dec, err := NewDecoder(rdr, opts...)
	if err != nil {
		return
	}
	defer dec.Close()

	for {
		ev, nErr := dec.Next()
		switch nErr {
		case nil:
		case io.EOF:
			return n, nil
		default:
			return n, nErr
		}

		n++
		if scanF(ev) {
			return n, nil
		}
	}
}
