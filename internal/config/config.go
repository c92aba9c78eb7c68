// Package config assembles the process-wide Configuration (cache/extract
// locations, weidu path, external extractors) and Credentials (named
// GitHub tokens), merging user files over built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ExtractorCommand names an external extraction command and its argument
// template; ${input} and ${target} are substituted literally, never through
// a shell, so there is no quoting hazard.
type ExtractorCommand struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Configuration holds process-wide settings assembled once at startup.
type Configuration struct {
	ArchiveCache    string                      `yaml:"archive_cache"`
	ExtractLocation string                      `yaml:"extract_location"`
	WeiduPath       string                      `yaml:"weidu_path"`
	Extractors      map[string]ExtractorCommand `yaml:"extractors"`
}

// defaultArchiveCache returns "${OS-cache}/modda" using the stdlib's own
// cross-platform per-user cache directory resolver.
func defaultArchiveCache() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	return filepath.Join(base, "modda"), nil
}

// Load reads Configuration from path, applying defaults for any field the
// file leaves unset. A missing file is not an error: defaults are used.
func Load(path string) (*Configuration, error) {
	cfg := &Configuration{
		ExtractLocation: os.TempDir(),
		Extractors:      map[string]ExtractorCommand{},
	}

	if defaultCache, err := defaultArchiveCache(); err == nil {
		cfg.ArchiveCache = defaultCache
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.ExtractLocation == "" {
		cfg.ExtractLocation = os.TempDir()
	}
	if cfg.ArchiveCache == "" {
		if defaultCache, err := defaultArchiveCache(); err == nil {
			cfg.ArchiveCache = defaultCache
		}
	}
	if cfg.Extractors == nil {
		cfg.Extractors = map[string]ExtractorCommand{}
	}

	return cfg, nil
}

// ExtractorFor returns the configured external extractor for ext (e.g.
// ".rar"), or false if none is configured.
func (c *Configuration) ExtractorFor(ext string) (ExtractorCommand, bool) {
	cmd, ok := c.Extractors[ext]
	return cmd, ok
}
