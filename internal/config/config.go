package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "gambito.yaml"

	minHashMB = 1
	maxHashMB = 128
	minDepth  = 1
	maxDepth  = 10
)

// Config carries the engine settings that exist before the GUI speaks:
// compiled defaults, overridden by an optional YAML file, overridden by
// environment variables. setoption still wins at runtime.
type Config struct {
	HashMB         int    `yaml:"hash_mb"`
	MaxSearchDepth int    `yaml:"max_search_depth"`
	BookPath       string `yaml:"book_path"`
}

func Load() (*Config, error) {
	cfg := &Config{
		HashMB:         64,
		MaxSearchDepth: 6,
	}

	path := strings.TrimSpace(os.Getenv("GAMBITO_CONFIG"))
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No config file is the common case.
	default:
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	if v := strings.TrimSpace(os.Getenv("GAMBITO_HASH_MB")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HashMB = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("GAMBITO_MAX_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSearchDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("GAMBITO_BOOK")); v != "" {
		cfg.BookPath = v
	}

	cfg.HashMB = clamp(cfg.HashMB, minHashMB, maxHashMB)
	cfg.MaxSearchDepth = clamp(cfg.MaxSearchDepth, minDepth, maxDepth)
	return cfg, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
