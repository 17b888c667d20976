package export

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// ConfigT mirrors the CLI flags for file-based configuration. Flags
// set explicitly on the command line win over file values.
type ConfigT struct {
	OutputBucket string `yaml:"output_bucket"`
	OutputPrefix string `yaml:"output_prefix"`
	Workers      int    `yaml:"workers"`
	Filter       string `yaml:"filter"`
	Console      bool   `yaml:"console"`
}

func LoadConfig(path string) (cfg ConfigT, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		err = fmt.Errorf("fail parse config %s: %w", path, err)
	}
	return
}
