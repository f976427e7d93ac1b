// Package config loads and validates the qrnotes configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/qrnotes/internal/assemble"
	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
	"git.home.luguber.info/inful/qrnotes/internal/qr"
	"git.home.luguber.info/inful/qrnotes/internal/retry"
)

// DefaultPath is the configuration file looked up when -c is not given.
const DefaultPath = "qrnotes.yaml"

// Config represents the application configuration.
type Config struct {
	Input    string         `yaml:"input"`
	Output   string         `yaml:"output"`
	QR       QRConfig       `yaml:"qr"`
	Layout   LayoutConfig   `yaml:"layout"`
	Preamble PreambleConfig `yaml:"preamble"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Retry    RetryConfig    `yaml:"retry"`
	// Fingerprint stamps the output with an input fingerprint and skips
	// conversions whose input is unchanged.
	Fingerprint bool `yaml:"fingerprint"`
}

// QRConfig controls QR image emission.
type QRConfig struct {
	Directory     string `yaml:"directory"`
	Size          int    `yaml:"size"` // PNG edge length in pixels
	RecoveryLevel string `yaml:"recovery_level"`
	DisableBorder bool   `yaml:"disable_border,omitempty"`
}

// LayoutConfig controls the QR appendix grid.
type LayoutConfig struct {
	Columns     int    `yaml:"columns"`
	RowsPerPage int    `yaml:"rows_per_page"`
	ImageWidth  string `yaml:"image_width"`
}

// PreambleConfig lists the LaTeX directives placed under header-includes.
type PreambleConfig struct {
	HeaderIncludes []string `yaml:"header_includes"`
}

// RetryConfig controls retries of the output write. Omitted fields take the
// default policy's values.
type RetryConfig struct {
	Backoff    string        `yaml:"backoff"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxRetries int           `yaml:"max_retries"`
}

// Policy returns the retry policy described by r.
func (r RetryConfig) Policy() retry.Policy {
	return retry.NewPolicy(retry.Backoff(r.Backoff), r.Initial, r.Max, r.MaxRetries)
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Input == "" {
		cfg.Input = "input.md"
	}
	if cfg.Output == "" {
		cfg.Output = "output.md"
	}
	if cfg.QR.Directory == "" {
		cfg.QR.Directory = "qr_codes"
	}
	if cfg.QR.Size == 0 {
		cfg.QR.Size = 256
	}
	if cfg.QR.RecoveryLevel == "" {
		cfg.QR.RecoveryLevel = "medium"
	}
	layout := assemble.DefaultLayout()
	if cfg.Layout.Columns == 0 {
		cfg.Layout.Columns = layout.Columns
	}
	if cfg.Layout.RowsPerPage == 0 {
		cfg.Layout.RowsPerPage = layout.RowsPerPage
	}
	if cfg.Layout.ImageWidth == "" {
		cfg.Layout.ImageWidth = "3cm"
	}
	if cfg.Preamble.HeaderIncludes == nil {
		cfg.Preamble.HeaderIncludes = append([]string(nil), assemble.DefaultHeaderIncludes...)
	}
	def := retry.DefaultPolicy()
	if cfg.Retry.Backoff == "" {
		cfg.Retry.Backoff = string(def.Mode)
	}
	if cfg.Retry.Initial == 0 {
		cfg.Retry.Initial = def.Initial
	}
	if cfg.Retry.Max == 0 {
		cfg.Retry.Max = def.Max
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = string(LogLevelInfo)
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = string(LogFormatText)
	}
}

// Load reads configPath, expanding ${VAR} references from the environment
// (after loading .env files). A missing file yields Default().
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").
			Fatal().
			UserAction().
			WithContext("path", configPath).
			Build()
	}
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults and validates it.
// Unknown keys are rejected; an empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Layout.Columns < 1 {
		errs = append(errs, fmt.Errorf("layout.columns must be positive, got %d", c.Layout.Columns))
	}
	if c.Layout.RowsPerPage < 1 {
		errs = append(errs, fmt.Errorf("layout.rows_per_page must be positive, got %d", c.Layout.RowsPerPage))
	}
	if c.QR.Size < 1 {
		errs = append(errs, fmt.Errorf("qr.size must be positive, got %d", c.QR.Size))
	}
	if _, err := qr.ParseRecoveryLevel(c.QR.RecoveryLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLogFormat(c.Logging.Format); err != nil {
		errs = append(errs, err)
	}
	mode, err := retry.ParseBackoff(c.Retry.Backoff)
	if err != nil {
		errs = append(errs, err)
	}
	raw := retry.Policy{Mode: mode, Initial: c.Retry.Initial, Max: c.Retry.Max, MaxRetries: c.Retry.MaxRetries}
	if err := raw.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retry: %w", err))
	}
	if c.Input != "" && c.Input == c.Output {
		errs = append(errs, fmt.Errorf("output must differ from input (%s)", c.Input))
	}
	return errors.Join(errs...)
}

// GridLayout returns the appendix grid shape.
func (c *Config) GridLayout() assemble.Layout {
	return assemble.Layout{Columns: c.Layout.Columns, RowsPerPage: c.Layout.RowsPerPage}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}
