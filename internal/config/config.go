// Package config loads carelist settings from YAML, the environment and
// built-in defaults.
//
// Precedence, lowest first: defaults, ~/.carelist/config.yaml, a project
// overlay, CARELIST_* variables, then command-line flags (applied by the CLI).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/carelist/internal/cache"
	"github.com/rshade/carelist/internal/paging"
)

// Schema versions.
const (
	// CurrentVersion is written by new config files.
	CurrentVersion = "1.0.0"
	// supportedVersions is the range of schema versions this build reads.
	supportedVersions = ">= 1.0.0, < 2.0.0"
)

// Source kinds.
const (
	SourceFixture  = "fixture"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Defaults.
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultHTTPTimeout  = 10 * time.Second
	DefaultHoldDuration = 10 * time.Minute
	DefaultFixtureCount = 5000

	configDirName  = ".carelist"
	configFileName = "config.yaml"
	logFileName    = "carelist.log"
	dirPerm        = 0o750
	filePerm       = 0o600
)

// Config errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported config version")
	ErrInvalidSource      = errors.New("invalid source kind")
	ErrMissingBaseURL     = errors.New("http source needs a base_url")
	ErrMissingDSN         = errors.New("postgres source needs a dsn")
	ErrInvalidList        = errors.New("invalid list settings")
)

// Config is the full carelist configuration.
type Config struct {
	Version string        `yaml:"version"`
	Logging LoggingConfig `yaml:"logging"`
	List    ListConfig    `yaml:"list"`
	Source  SourceConfig  `yaml:"source"`
	Cache   cache.Config  `yaml:"cache"`
	Session SessionConfig `yaml:"session"`
}

// LoggingConfig controls where logs go. An empty File logs to stderr.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Caller     bool   `yaml:"caller"`
}

// ListConfig tunes the windowed list. Zero values use the list defaults.
type ListConfig struct {
	Overscan          int           `yaml:"overscan"`
	Threshold         int           `yaml:"threshold"`
	MinimumBatchSize  int           `yaml:"minimum_batch_size"`
	EstimatedItemSize int           `yaml:"estimated_item_size"`
	SmoothScroll      bool          `yaml:"smooth_scroll"`
	StrictSizes       bool          `yaml:"strict_sizes"`
	HoldDuration      time.Duration `yaml:"hold_duration"`
}

// SourceConfig selects and configures the page source.
type SourceConfig struct {
	Kind     string        `yaml:"kind"`
	BaseURL  string        `yaml:"base_url"`
	DSN      string        `yaml:"dsn"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
	MaxItems int           `yaml:"max_items"`
	// Sort is "field" or "field:order".
	Sort    string        `yaml:"sort"`
	Fixture FixtureConfig `yaml:"fixture"`
}

// FixtureConfig shapes the generated data set.
type FixtureConfig struct {
	Count     int           `yaml:"count"`
	Seed      int64         `yaml:"seed"`
	Latency   time.Duration `yaml:"latency"`
	FailEvery int           `yaml:"fail_every"`
}

// SessionConfig names the default user and workspace.
type SessionConfig struct {
	User      string `yaml:"user"`
	Workspace string `yaml:"workspace"`
}

// Dir returns the carelist home directory, ~/.carelist.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, configDirName)
}

// DefaultPath returns the location of the user config file.
func DefaultPath() string {
	return filepath.Join(Dir(), configFileName)
}

// New returns a configuration holding only defaults.
func New() *Config {
	return &Config{
		Version: CurrentVersion,
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
			File:   filepath.Join(Dir(), "logs", logFileName),
		},
		List: ListConfig{
			HoldDuration: DefaultHoldDuration,
		},
		Source: SourceConfig{
			Kind:     SourceFixture,
			Timeout:  DefaultHTTPTimeout,
			PageSize: paging.DefaultPageSize,
			Fixture:  FixtureConfig{Count: DefaultFixtureCount},
		},
		Cache: cache.DefaultConfig(),
	}
}

// Load reads path over the defaults, then merges each overlay that exists.
// A missing file is not an error. Environment overrides are applied last and
// the result validated.
func Load(path string, overlays ...string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	for _, overlay := range overlays {
		if _, statErr := os.Stat(overlay); statErr != nil {
			continue
		}
		if err = ShallowMergeYAML(cfg, overlay); err != nil {
			return nil, err
		}
	}

	if err = cfg.CheckVersion(); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// CheckVersion rejects config files written for an incompatible schema.
// An empty version is treated as current.
func (c *Config) CheckVersion() error {
	if c.Version == "" {
		c.Version = CurrentVersion
		return nil
	}
	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, c.Version, err)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, v, supportedVersions)
	}
	return nil
}

// Validate checks that the configuration can drive a session.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source.Kind {
	case SourceFixture:
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			errs = append(errs, ErrMissingBaseURL)
		}
	case SourcePostgres:
		if c.Source.DSN == "" {
			errs = append(errs, ErrMissingDSN)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidSource, c.Source.Kind))
	}

	if err := c.PagingParams().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := paging.ParseSort(c.Source.Sort); err != nil {
		errs = append(errs, err)
	}
	if c.List.Overscan < 0 || c.List.Threshold < 0 || c.List.MinimumBatchSize < 0 || c.List.EstimatedItemSize < 0 {
		errs = append(errs, fmt.Errorf("%w: sizes cannot be negative", ErrInvalidList))
	}
	if c.List.HoldDuration < 0 {
		errs = append(errs, fmt.Errorf("%w: hold duration cannot be negative", ErrInvalidList))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}

	return errors.Join(errs...)
}

// PagingParams converts the source settings to paging parameters.
func (c *Config) PagingParams() paging.Params {
	params := paging.NewParams()
	params.PageSize = c.Source.PageSize
	params.MaxItems = c.Source.MaxItems
	if field, order, err := paging.ParseSort(c.Source.Sort); err == nil && field != "" {
		params.Sort, params.Order = field, order
	}
	return params
}
