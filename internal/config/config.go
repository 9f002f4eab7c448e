// Package config loads the schemabind command configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	schemabind "github.com/reoring/schemabind"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "schemabind.yaml"

// Config is the root configuration structure.
type Config struct {
	// Catalog is a catalogue file or directory. Empty selects the built-in
	// sample catalogue.
	Catalog  string         `yaml:"catalog"`
	Driver   string         `yaml:"driver"`   // "json" or "gojson"
	Language string         `yaml:"language"` // "en" or "ja"
	Parse    ParseConfig    `yaml:"parse"`
	Validate ValidateConfig `yaml:"validate"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
}

// ParseConfig configures document parsing.
type ParseConfig struct {
	MaxDepth      int    `yaml:"max_depth"`
	MaxBytes      int64  `yaml:"max_bytes"`
	DuplicateKeys string `yaml:"duplicate_keys"` // "ignore", "warn" or "error"
}

// ValidateConfig configures document validation.
type ValidateConfig struct {
	Strict   bool `yaml:"strict"`
	Collect  bool `yaml:"collect"`
	MaxDepth int  `yaml:"max_depth"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// ServerConfig configures the validation server.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse reads configuration from YAML bytes. Environment variables in the
// source are expanded and SCHEMABIND_* variables override file values.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv creates configuration from defaults and environment variables.
//
// Environment variables:
//
//	SCHEMABIND_CATALOG           - Catalogue file or directory
//	SCHEMABIND_DRIVER            - JSON driver: json or gojson (default: json)
//	SCHEMABIND_LANGUAGE          - Message language: en or ja (default: en)
//	SCHEMABIND_PARSE_MAX_DEPTH   - Maximum nesting while parsing (default: 0, unlimited)
//	SCHEMABIND_PARSE_MAX_BYTES   - Maximum document size (default: 0, unlimited)
//	SCHEMABIND_DUPLICATE_KEYS    - ignore, warn or error (default: error)
//	SCHEMABIND_VALIDATE_STRICT   - Strict validation (default: false)
//	SCHEMABIND_VALIDATE_COLLECT  - Report every issue (default: false)
//	SCHEMABIND_LOG_LEVEL         - debug, info, warn, error (default: info)
//	SCHEMABIND_LOG_FORMAT        - json or console (default: console)
//	SCHEMABIND_SERVER_ADDR       - Listen address for serve (default: :8080)
//	SCHEMABIND_SERVER_TIMEOUT    - Per-request timeout (default: 30s)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads path when it exists and falls back to the
// environment otherwise. An explicitly named file that is missing is an
// error; the default file name is optional.
func LoadWithFallback(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if explicit {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return LoadFromEnv()
}

// ParseOpt converts the parse section into parse options.
func (c *Config) ParseOpt() schemabind.ParseOpt {
	sev, _ := schemabind.ParseSeverity(c.Parse.DuplicateKeys)
	return schemabind.ParseOpt{
		Strictness: schemabind.Strictness{OnDuplicateKey: sev},
		MaxDepth:   c.Parse.MaxDepth,
		MaxBytes:   c.Parse.MaxBytes,
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCHEMABIND_CATALOG"); v != "" {
		cfg.Catalog = v
	}
	if v := os.Getenv("SCHEMABIND_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv("SCHEMABIND_LANGUAGE"); v != "" {
		cfg.Language = v
	}

	// Parsing
	if v := os.Getenv("SCHEMABIND_PARSE_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Parse.MaxDepth = n
		}
	}
	if v := os.Getenv("SCHEMABIND_PARSE_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Parse.MaxBytes = n
		}
	}
	if v := os.Getenv("SCHEMABIND_DUPLICATE_KEYS"); v != "" {
		cfg.Parse.DuplicateKeys = v
	}

	// Validation
	if v := os.Getenv("SCHEMABIND_VALIDATE_STRICT"); v != "" {
		cfg.Validate.Strict = parseBool(v)
	}
	if v := os.Getenv("SCHEMABIND_VALIDATE_COLLECT"); v != "" {
		cfg.Validate.Collect = parseBool(v)
	}

	// Logging
	if v := os.Getenv("SCHEMABIND_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCHEMABIND_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Server
	if v := os.Getenv("SCHEMABIND_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SCHEMABIND_SERVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.RequestTimeout = d
		}
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Driver == "" {
		cfg.Driver = "json"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Parse.DuplicateKeys == "" {
		cfg.Parse.DuplicateKeys = "error"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
}

func validate(cfg *Config) error {
	var errs []error

	validDrivers := map[string]bool{"json": true, "gojson": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, fmt.Errorf("driver must be 'json' or 'gojson', got %q", cfg.Driver))
	}
	validLanguages := map[string]bool{"en": true, "ja": true}
	if !validLanguages[cfg.Language] {
		errs = append(errs, fmt.Errorf("language must be 'en' or 'ja', got %q", cfg.Language))
	}
	if _, ok := schemabind.ParseSeverity(cfg.Parse.DuplicateKeys); !ok {
		errs = append(errs, fmt.Errorf("parse.duplicate_keys must be one of: ignore, warn, error"))
	}
	if cfg.Parse.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("parse.max_depth must not be negative"))
	}
	if cfg.Parse.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("parse.max_bytes must not be negative"))
	}
	if cfg.Validate.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("validate.max_depth must not be negative"))
	}
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, disabled"))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format))
	}
	if cfg.Server.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout must not be negative"))
	}
	return errors.Join(errs...)
}
