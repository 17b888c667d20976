package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	data := `
output_bucket: gs://decoded-logs
output_prefix: exported/
workers: 8
filter: '.sourcetype == "st_1"'
console: true
`

	path := filepath.Join(t.TempDir(), "export.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	want := ConfigT{
		OutputBucket: "gs://decoded-logs",
		OutputPrefix: "exported/",
		Workers:      8,
		Filter:       `.sourcetype == "st_1"`,
		Console:      true,
	}
	if cfg != want {
		t.Errorf("Expected %+v, got %+v", want, cfg)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("Expected error on missing file")
	}
}

func TestLoadConfigBadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: [not an int"), 0o644); err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Errorf("Expected parse error")
	}
}
