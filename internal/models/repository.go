package models

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultChunkSize is the read size of the chunked stream copier (128 KiB)
const DefaultChunkSize = 128 * 1024

// Config contains configuration for one ingestion run
type Config struct {
	// Input/Output
	RepoDir string `yaml:"repo_dir"` // Directory holding repodata/repomd.xml
	WorkDir string `yaml:"work_dir"` // Transient directory for materialized artifacts

	// Resolution
	SupportedDatabaseVersions []int    `yaml:"supported_database_versions"`
	Categories                []string `yaml:"categories"` // Optional allow-list of repomd types

	// Materialization
	ChunkSize       int  `yaml:"chunk_size"`
	VerifyChecksums bool `yaml:"verify_checksums"`

	// Signature verification of repomd.xml
	KeyringPath string `yaml:"keyring"`

	Jobs        int  `yaml:"jobs"`         // Categories processed concurrently
	KeepWorkDir bool `yaml:"keep_workdir"` // Leave materialized artifacts in place after the run
}

// DefaultConfig returns a Config with defaults applied
func DefaultConfig() Config {
	return Config{
		RepoDir:                   ".",
		WorkDir:                   "workdir",
		SupportedDatabaseVersions: []int{10},
		ChunkSize:                 DefaultChunkSize,
		Jobs:                      1,
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, &PipelineError{
			Type: ErrInvalidConfig,
			Err:  fmt.Errorf("failed to read config: %w", err),
		}
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, &PipelineError{
			Type: ErrInvalidConfig,
			Err:  fmt.Errorf("failed to parse config %s: %w", path, err),
		}
	}

	return config, nil
}

// Validate checks the configuration and fills zero values with defaults
func (c *Config) Validate() error {
	if c.RepoDir == "" {
		return &PipelineError{Type: ErrInvalidConfig, Err: fmt.Errorf("repo dir is required")}
	}
	if c.WorkDir == "" {
		return &PipelineError{Type: ErrInvalidConfig, Err: fmt.Errorf("work dir is required")}
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Jobs <= 0 {
		c.Jobs = 1
	}
	if len(c.SupportedDatabaseVersions) == 0 {
		c.SupportedDatabaseVersions = []int{10}
	}
	for _, name := range c.Categories {
		if ParseCategory(name) == CategoryUnknown {
			return &PipelineError{
				Type: ErrInvalidConfig,
				Err:  fmt.Errorf("unknown category in allow-list: %s", name),
			}
		}
	}
	return nil
}

// SupportsDatabaseVersion reports whether a declared database version can be read
func (c *Config) SupportsDatabaseVersion(version int) bool {
	return slices.Contains(c.SupportedDatabaseVersions, version)
}

// Priorities returns the alternative table used by the index resolver
func (c *Config) Priorities() Priorities {
	return DefaultPriorities()
}

// Wants reports whether the category passes the allow-list
func (c *Config) Wants(category Category) bool {
	if len(c.Categories) == 0 {
		return true
	}
	return slices.Contains(c.Categories, category.String())
}
