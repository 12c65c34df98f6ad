package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is the optional YAML config file. Flags given on the command line
// take precedence over it.
//
//	database: ~/attendance/rollcall.db
//	format: json
//	verbose: false
//	cache_key: attendanceWorkbook
type Config struct {
	Database string `yaml:"database"`
	Format   string `yaml:"format"`
	Verbose  *bool  `yaml:"verbose"`
	CacheKey string `yaml:"cache_key"`
}

// LoadConfig reads a config file. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

// applyConfig fills opts from --config for every flag not set explicitly.
func applyConfig(cmd *cobra.Command, opts *RootOptions) error {
	if opts.ConfigPath == "" {
		return nil
	}
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if cfg.Database != "" && !flags.Changed("db") {
		opts.Database = cfg.Database
	}
	if cfg.Format != "" && !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if cfg.Verbose != nil && !flags.Changed("verbose") {
		opts.Verbose = *cfg.Verbose
	}
	if cfg.CacheKey != "" && !flags.Changed("cache-key") {
		opts.CacheKey = cfg.CacheKey
	}
	return nil
}
