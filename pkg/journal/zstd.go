package journal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic identifies a zstandard frame header.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// openStream sniffs the start of rdr and, when a zstd frame is
// present, interposes a streaming decompressor. The returned reader
// yields the logical journal byte stream either way; the close func
// releases decompressor resources and is non-nil only for compressed
// input. Decompression is pull-based so journals much larger than RAM
// stream through a bounded window.
func openStream(rdr io.Reader) (io.Reader, func(), error) {
	brdr := bufio.NewReaderSize(rdr, defBufferSize)

	magic, err := brdr.Peek(len(zstdMagic))
	switch {
	case err == io.EOF:
		// Shorter than a frame header; cannot be compressed.
		return brdr, nil, nil
	case err != nil:
		return nil, nil, err
	case !bytes.Equal(magic, zstdMagic):
		return brdr, nil, nil
	}

	zrdr, err := zstd.NewReader(brdr, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, nil, fmt.Errorf("fail zstd init: %w", err)
	}
	return zrdr, zrdr.Close, nil
}
