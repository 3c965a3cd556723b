package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// TTL bounds and defaults.
const (
	DefaultTTL       = 5 * time.Minute
	MinTTL           = 10 * time.Second
	MaxTTL           = 24 * time.Hour
	DefaultMaxSizeMB = 50

	hoursPerDay    = 24
	minutesPerHour = 60
)

// Environment variables overriding the cache settings.
const (
	EnvEnabled   = "CARELIST_CACHE_ENABLED"
	EnvDir       = "CARELIST_CACHE_DIR"
	EnvTTL       = "CARELIST_CACHE_TTL"
	EnvMaxSizeMB = "CARELIST_CACHE_MAX_SIZE_MB"
)

// ErrInvalidTTL is returned for a TTL outside [MinTTL, MaxTTL].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %s and %s", MinTTL, MaxTTL)

// Config holds the page cache settings.
type Config struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	TTL       time.Duration `yaml:"ttl"`
	MaxSizeMB int           `yaml:"max_size_mb"`
}

// DefaultConfig returns the cache settings used when nothing is configured.
// The directory lives under the user's home, falling back to the temp dir.
func DefaultConfig() Config {
	base, err := os.UserHomeDir()
	if err != nil {
		base = os.TempDir()
	}
	return Config{
		Enabled:   true,
		Dir:       filepath.Join(base, ".carelist", "cache"),
		TTL:       DefaultTTL,
		MaxSizeMB: DefaultMaxSizeMB,
	}
}

// Validate checks an enabled configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Dir == "" {
		return ErrEmptyDir
	}
	if c.TTL < MinTTL || c.TTL > MaxTTL {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, c.TTL)
	}
	if c.MaxSizeMB < 0 {
		return fmt.Errorf("max size cannot be negative: got %d", c.MaxSizeMB)
	}
	return nil
}

// ApplyEnv returns c with CARELIST_CACHE_* overrides applied. Invalid values
// are ignored.
func (c Config) ApplyEnv() Config {
	if v := os.Getenv(EnvEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvDir); v != "" {
		c.Dir = v
	}
	if v := os.Getenv(EnvTTL); v != "" {
		if ttl, err := ParseTTL(v); err == nil {
			c.TTL = ttl
		}
	}
	if v := os.Getenv(EnvMaxSizeMB); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size >= 0 {
			c.MaxSizeMB = size
		}
	}
	return c
}

// ParseTTL parses a TTL given as integer seconds ("300") or a duration
// string ("5m", "1h30m").
func ParseTTL(s string) (time.Duration, error) {
	var ttl time.Duration
	if seconds, err := strconv.Atoi(s); err == nil {
		ttl = time.Duration(seconds) * time.Second
	} else {
		parsed, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", parseErr)
		}
		ttl = parsed
	}

	if ttl < MinTTL || ttl > MaxTTL {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}
	return ttl, nil
}

// FormatDuration formats a duration compactly: "45s", "5m", "1h30m", "2d3h".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	case d < hoursPerDay*time.Hour:
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	default:
		days := int(d.Hours()) / hoursPerDay
		hours := int(d.Hours()) % hoursPerDay
		if hours == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd%dh", days, hours)
	}
}
