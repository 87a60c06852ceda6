package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFor returns the format matching the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UNDOREDO_"

// Load reads the configuration at path, applies environment overrides and
// validates the result. An empty path or a missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			format, err := FormatFor(path)
			if err != nil {
				return nil, err
			}
			if err := Parse(format, path, data, cfg); err != nil {
				return nil, err
			}
		case os.IsNotExist(err):
			// File doesn't exist, not an error
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data in the given format on top of cfg. Fields absent from
// data keep their current values. source names the data in errors.
func Parse(format Format, source string, data []byte, cfg *Config) error {
	var err error
	switch format {
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil // empty document
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return &ParseError{Path: source, Err: err}
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables read through lookup.
//
//	UNDOREDO_CAPACITY   history.capacity
//	UNDOREDO_ENABLED    history.enabled
//	UNDOREDO_LOG_LEVEL  logging.level
//	UNDOREDO_LOG_FILE   logging.file
//	UNDOREDO_SEED       scene.seed
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "CAPACITY"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sCAPACITY: %w", EnvPrefix, err)
		}
		cfg.History.Capacity = n
	}
	if v, ok := lookup(EnvPrefix + "ENABLED"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sENABLED: %w", EnvPrefix, err)
		}
		cfg.History.Enabled = b
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Logging.Level = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvPrefix + "LOG_FILE"); ok {
		cfg.Logging.File = v
	}
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		cfg.Scene.Seed = n
	}
	return nil
}
