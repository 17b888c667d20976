package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, name string, data []byte) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	var (
		ctx  = context.Background()
		root = t.TempDir()
	)

	writeFile(t, root, "frozen/db/bucket_1/rawdata/journal", []byte("abc"))
	writeFile(t, root, "frozen/db/bucket_2/rawdata/journal.zst", []byte("defg"))
	writeFile(t, root, "other/readme.txt", []byte("x"))

	store := NewLocalStore(root)

	blobs, err := store.List(ctx, "frozen/")
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if len(blobs) != 2 {
		t.Fatalf("Expected 2 blobs, got %d", len(blobs))
	}

	var journals int
	for _, blob := range blobs {
		if IsJournal(blob.Name) {
			journals++
		}
	}
	if journals != 2 {
		t.Errorf("Expected 2 journals, got %d", journals)
	}

	rdr, err := store.Open(ctx, "frozen/db/bucket_1/rawdata/journal")
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	data, err := io.ReadAll(rdr)
	rdr.Close()
	if err != nil || string(data) != "abc" {
		t.Errorf("Expected abc, got %q (%v)", data, err)
	}

	wtr, err := store.Create(ctx, "decoded/bucket_1.jsonl")
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if _, err = wtr.Write([]byte("{}\n")); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if err = wtr.Close(); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	data, err = os.ReadFile(filepath.Join(root, "decoded", "bucket_1.jsonl"))
	if err != nil || string(data) != "{}\n" {
		t.Errorf("Expected {}\\n, got %q (%v)", data, err)
	}
}

func TestLocalStoreListAll(t *testing.T) {
	var (
		ctx  = context.Background()
		root = t.TempDir()
	)

	writeFile(t, root, "bucket_1/rawdata/journal", []byte("abc"))

	store := NewLocalStore(root)

	blobs, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if len(blobs) != 1 {
		t.Fatalf("Expected 1 blob, got %d", len(blobs))
	}
	if blobs[0].Name != "bucket_1/rawdata/journal" {
		t.Errorf("Expected slash name, got %s", blobs[0].Name)
	}
	if blobs[0].Size != 3 {
		t.Errorf("Expected size 3, got %d", blobs[0].Size)
	}
}
