package scour

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MountSpec declares one mount in a config file. Source uses the same
// PATH:SOURCE grammar as the command line: a host directory, "memfs",
// "sqlite:FILE" or an http(s) URL.
type MountSpec struct {
	Path   string `yaml:"path"`
	Source string `yaml:"source"`
}

// SearchDefaults are applied when the command line does not say
// otherwise.
type SearchDefaults struct {
	BufferSize  int  `yaml:"bufferSize"`
	StopAtFirst bool `yaml:"stopAtFirst"`
	Metadata    bool `yaml:"metadata"`
	IncludeRoot bool `yaml:"includeRoot"`
}

// Config is the YAML configuration for the scour CLI.
//
// Example:
//
//	mounts:
//	  - path: /data
//	    source: ./workspace
//	  - path: /index
//	    source: sqlite:index.db
//	defaults:
//	  bufferSize: 65536
//	  metadata: true
type Config struct {
	Mounts   []MountSpec    `yaml:"mounts"`
	Defaults SearchDefaults `yaml:"defaults"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	for i, m := range cfg.Mounts {
		if m.Path == "" || m.Source == "" {
			return nil, fmt.Errorf("config %s: mount %d needs both path and source", path, i)
		}
	}
	if cfg.Defaults.BufferSize < 0 {
		return nil, fmt.Errorf("config %s: negative bufferSize", path)
	}
	return &cfg, nil
}

// Flags translates the config defaults into a search flag set.
func (d SearchDefaults) Flags() Flags {
	var f Flags
	if d.StopAtFirst {
		f |= StopAtFirst
	}
	if d.Metadata {
		f |= IncludeMetadata
	}
	if d.IncludeRoot {
		f |= IncludeRoot
	}
	return f
}
