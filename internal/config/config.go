package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Format selects the input pipeline.
type Format string

const (
	FormatAuto Format = "auto" // detect from extension, then content
	FormatCSV  Format = "csv"  // proxy CSV export, streamed
	FormatXML  Format = "xml"  // Burp Suite XML export, batched
)

// Default values used both for flag registration and for deciding whether a
// config-file value may override a flag.
const (
	DefaultFormat         = FormatAuto
	DefaultMaxErrorDetail = 5
)

// Config holds the application configuration.
type Config struct {
	// Input handling
	Format Format // input format selection

	// Output
	Passthrough bool // carry every original source field into each entry
	GzipOutput  bool // gzip-compress the written HAR document

	// Reporting
	Quiet          bool // suppress console output
	Verbose        bool // per-row progress and debug output
	MaxErrorDetail int  // how many per-record errors to surface individually
}

// FileConfig represents the configuration file structure with JSON tags.
// Pointer fields distinguish "absent" from zero values.
type FileConfig struct {
	Format         *string `json:"format,omitempty"`
	Passthrough    *bool   `json:"passthrough,omitempty"`
	GzipOutput     *bool   `json:"gzip_output,omitempty"`
	Quiet          *bool   `json:"quiet,omitempty"`
	Verbose        *bool   `json:"verbose,omitempty"`
	MaxErrorDetail *int    `json:"max_error_detail,omitempty"`
}

// GetConfigDir returns the configuration directory following the XDG spec.
func GetConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "harconv")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "harconv")
	}
	return ".harconv"
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.json")
}

// LoadConfigFile loads configuration from a JSON file. A missing file is not
// an error; it yields an empty config.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, err
	}

	var config FileConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// MergeWithFileConfig merges file configuration into c. CLI parameters take
// precedence: a file value only applies where the flag was left at its
// default.
func (c *Config) MergeWithFileConfig(fileConfig *FileConfig) {
	if fileConfig.Format != nil && c.Format == DefaultFormat {
		c.Format = Format(*fileConfig.Format)
	}
	if fileConfig.Passthrough != nil && c.Passthrough {
		c.Passthrough = *fileConfig.Passthrough
	}
	if fileConfig.GzipOutput != nil && !c.GzipOutput {
		c.GzipOutput = *fileConfig.GzipOutput
	}
	if fileConfig.Quiet != nil && !c.Quiet {
		c.Quiet = *fileConfig.Quiet
	}
	if fileConfig.Verbose != nil && !c.Verbose {
		c.Verbose = *fileConfig.Verbose
	}
	if fileConfig.MaxErrorDetail != nil && c.MaxErrorDetail == DefaultMaxErrorDetail {
		c.MaxErrorDetail = *fileConfig.MaxErrorDetail
	}
}
