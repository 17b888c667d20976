package storage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

type gcsStoreT struct {
	client *storage.Client
	bucket string
}

// NewGcsStore opens a Google Cloud Storage client against one bucket
// using ambient credentials.
func NewGcsStore(ctx context.Context, bucket string) (StoreI, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail GCS client: %w", err)
	}

	return &gcsStoreT{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *gcsStoreT) List(ctx context.Context, prefix string) ([]BlobInfoT, error) {
	var (
		blobs []BlobInfoT
		it    = s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	)

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fail list %s/%s: %w", s, prefix, err)
		}

		blobs = append(blobs, BlobInfoT{
			Name: attrs.Name,
			Size: attrs.Size,
		})
	}

	return blobs, nil
}

func (s *gcsStoreT) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rdr, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail open %s/%s: %w", s, name, err)
	}
	return rdr, nil
}

func (s *gcsStoreT) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	wtr := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	wtr.ContentType = "application/json"
	return wtr, nil
}

func (s *gcsStoreT) String() string {
	return "gs://" + s.bucket
}
