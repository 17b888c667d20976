package storage

import (
	"context"
	"io"
	"strings"
)

// BlobInfoT identifies one blob in a store.
type BlobInfoT struct {
	Name string
	Size int64
}

// StoreI is the object-store seam: enumerate blobs under a prefix,
// open one for sequential reading, create one for writing. Reads and
// writes are streaming.
type StoreI interface {
	List(ctx context.Context, prefix string) ([]BlobInfoT, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Create(ctx context.Context, name string) (io.WriteCloser, error)
	String() string
}

// IsJournal reports whether a blob name is a frozen bucket journal
// payload. Buckets lay these out as <bucket>/rawdata/journal or
// journal.zst.
func IsJournal(name string) bool {
	return strings.HasSuffix(name, "journal.zst") ||
		strings.HasSuffix(name, "/journal") ||
		name == "journal"
}

// New resolves a source or destination URL to a store plus the prefix
// inside it. gs://bucket/prefix selects GCS; anything else is a local
// directory root with an empty prefix.
func New(ctx context.Context, url string) (StoreI, string, error) {
	bucket, prefix, ok := ParseGcsURL(url)
	if !ok {
		return NewLocalStore(url), "", nil
	}

	store, err := NewGcsStore(ctx, bucket)
	if err != nil {
		return nil, "", err
	}
	return store, prefix, nil
}

// ParseGcsURL splits gs://bucket/prefix into its parts.
func ParseGcsURL(url string) (bucket, prefix string, ok bool) {
	rest, ok := strings.CutPrefix(url, "gs://")
	if !ok {
		return
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	ok = bucket != ""
	return
}
