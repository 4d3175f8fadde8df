package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name inside a data directory.
const FileName = "tiptally.yaml"

// Config represents the top-level tiptally.yaml configuration.
type Config struct {
	Identities IdentitiesConfig `yaml:"identities"`
	Source     SourceConfig     `yaml:"source"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Git        GitConfig        `yaml:"git"`
}

// IdentitiesConfig lists the operator's own identities and any
// identities excluded from aggregation entirely.
type IdentitiesConfig struct {
	Self     []string `yaml:"self,omitempty"`
	Excluded []string `yaml:"excluded,omitempty"`
}

// SourceConfig points at the paginated transaction endpoint.
type SourceConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// IngestConfig controls ingestion defaults.
type IngestConfig struct {
	PageLimit int `yaml:"page_limit"`
}

// GitConfig controls git snapshots of the data directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tiptally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data dir.
func Default(sourceURL string) *Config {
	return &Config{
		Source: SourceConfig{
			URL:            sourceURL,
			TimeoutSeconds: 30,
		},
		Ingest: IngestConfig{
			PageLimit: 20,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "tiptally",
			AuthorEmail: "tiptally@localhost",
		},
	}
}
