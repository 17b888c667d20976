package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// localStoreT serves blobs from a directory tree. Names are
// slash-separated paths relative to the root, matching object store
// naming.
type localStoreT struct {
	root string
}

func NewLocalStore(root string) StoreI {
	return &localStoreT{root: root}
}

func (s *localStoreT) List(_ context.Context, prefix string) ([]BlobInfoT, error) {
	var blobs []BlobInfoT

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		name := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		blobs = append(blobs, BlobInfoT{
			Name: name,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return blobs, nil
}

func (s *localStoreT) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.root, filepath.FromSlash(name)))
}

func (s *localStoreT) Create(_ context.Context, name string) (io.WriteCloser, error) {
	path := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func (s *localStoreT) String() string {
	return s.root
}
