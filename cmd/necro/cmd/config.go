package cmd

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the optional pipeline configuration file a `compile`
// invocation can load with --config. Command-line flags always take
// precedence over a loaded file; Config only supplies defaults for flags
// the caller didn't set explicitly.
type Config struct {
	DumpAST  bool `yaml:"dumpAST"`
	DumpCore bool `yaml:"dumpCore"`
	DumpIR   bool `yaml:"dumpIR"`
}

// LoadConfig reads and parses a YAML config file. A missing path is not
// an error; it returns the zero Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
