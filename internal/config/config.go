// Package config loads the settings of the gzipenc command: a JSON file,
// then GZIPENC_* environment variables, optionally read from .env files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const envPrefix = "GZIPENC_"

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Addr: ":3336",
		Root: ".",
		Compression: CompressionConfig{
			Gzip: GzipConfig{
				Enabled: true,
				Level:   3,
			},
			Brotli: CompressorConfig{
				Enabled: false,
				Level:   6,
			},
			MinSize: 1024,
		},
		Log: LogConfig{
			Level:      "info",
			Console:    true,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load reads the JSON file at path over the defaults and applies
// environment overrides. A missing file is not an error; an empty path
// skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv reads KEY=value files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: %s: %w", f, err)
		}
	}
	return nil
}

// Save writes cfg to path as indented JSON.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"ADDR", &cfg.Addr},
		{"ROOT", &cfg.Root},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"LOG_FILE", &cfg.Log.FilePath},
	}
	for _, s := range strs {
		if v, ok := lookup(envPrefix + s.key); ok {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MIN_SIZE", &cfg.Compression.MinSize},
		{"GZIP_LEVEL", &cfg.Compression.Gzip.Level},
		{"BROTLI_LEVEL", &cfg.Compression.Brotli.Level},
	}
	for _, i := range ints {
		v, ok := lookup(envPrefix + i.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, i.key, err)
		}
		*i.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"GZIP_ENABLED", &cfg.Compression.Gzip.Enabled},
		{"GZIP_SIZE", &cfg.Compression.Gzip.Size},
		{"BROTLI_ENABLED", &cfg.Compression.Brotli.Enabled},
		{"LOG_CONSOLE", &cfg.Log.Console},
	}
	for _, b := range bools {
		v, ok := lookup(envPrefix + b.key)
		if !ok {
			continue
		}
		t, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, b.key, err)
		}
		*b.dst = t
	}
	return nil
}
