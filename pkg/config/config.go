// Package config resolves the application configuration. Everything is
// carried in an explicit Config value handed to the store; there are
// no ambient globals beyond the viper instance the CLI binds flags to.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/entrhq/recall/pkg/memory"
	"github.com/entrhq/recall/pkg/memory/lock"
)

// Lock backend names accepted by Config.LockBackend.
const (
	LockBackendFlock    = "flock"
	LockBackendLockfile = "lockfile"
	LockBackendMemory   = "memory"
)

// Config is the full application configuration. Precedence is
// flags > environment (RECALL_*) > config file > defaults.
type Config struct {
	Dir            string        `mapstructure:"dir" yaml:"dir"`
	LockBackend    string        `mapstructure:"lock_backend" yaml:"lock_backend"`
	LockTimeout    time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`
	LockStaleAfter time.Duration `mapstructure:"lock_stale_after" yaml:"lock_stale_after"`
	SearchLimit    int           `mapstructure:"search_limit" yaml:"search_limit"`
	MinScore       float64       `mapstructure:"min_score" yaml:"min_score"`
	PreviewWidth   int           `mapstructure:"preview_width" yaml:"preview_width"`
	DigestBudget   int           `mapstructure:"digest_budget" yaml:"digest_budget"`
	Debug          bool          `mapstructure:"debug" yaml:"debug"`
}

// DefaultDir returns the default store directory, ~/.recall/memory.
// It falls back to a relative path when the home directory cannot be
// resolved.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recall/memory"
	}
	return filepath.Join(home, ".recall", "memory")
}

// DefaultConfigPath returns ~/.recall/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".recall", "config.yaml"), nil
}

// Load unmarshals the configuration from viper, applies defaults, and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration with all defaults applied and no
// external sources consulted.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir()
	}
	if cfg.LockBackend == "" {
		cfg.LockBackend = LockBackendFlock
	}
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = lock.DefaultTimeout
	}
	if cfg.LockStaleAfter == 0 {
		cfg.LockStaleAfter = lock.DefaultStaleAfter
	}
	if cfg.SearchLimit == 0 {
		cfg.SearchLimit = memory.DefaultSearchLimit
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = memory.DefaultMinScore
	}
	if cfg.PreviewWidth == 0 {
		cfg.PreviewWidth = memory.DefaultPreviewWidth
	}
	if cfg.DigestBudget == 0 {
		cfg.DigestBudget = memory.DefaultDigestBudget
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	switch c.LockBackend {
	case LockBackendFlock, LockBackendLockfile, LockBackendMemory:
	default:
		return fmt.Errorf("config: unknown lock backend %q (want %s, %s, or %s)",
			c.LockBackend, LockBackendFlock, LockBackendLockfile, LockBackendMemory)
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("config: lock_timeout must not be negative, got %s", c.LockTimeout)
	}
	if c.LockStaleAfter < 0 {
		return fmt.Errorf("config: lock_stale_after must not be negative, got %s", c.LockStaleAfter)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("config: min_score must be in [0, 1], got %g", c.MinScore)
	}
	if c.SearchLimit < 0 {
		return fmt.Errorf("config: search_limit must not be negative, got %d", c.SearchLimit)
	}
	if c.PreviewWidth < 0 {
		return fmt.Errorf("config: preview_width must not be negative, got %d", c.PreviewWidth)
	}
	if c.DigestBudget < 0 {
		return fmt.Errorf("config: digest_budget must not be negative, got %d", c.DigestBudget)
	}
	return nil
}

// NewLocker builds the configured lock backend.
func (c *Config) NewLocker(logger *slog.Logger) (lock.Locker, error) {
	switch c.LockBackend {
	case LockBackendFlock:
		return lock.NewFlock(c.LockTimeout), nil
	case LockBackendLockfile:
		return lock.NewFileLock(c.LockTimeout, c.LockStaleAfter, logger), nil
	case LockBackendMemory:
		return lock.NewMemLock(c.LockTimeout), nil
	default:
		return nil, fmt.Errorf("config: unknown lock backend %q", c.LockBackend)
	}
}

// OpenStore opens the memory store described by the configuration.
func (c *Config) OpenStore(logger *slog.Logger) (*memory.Store, error) {
	locker, err := c.NewLocker(logger)
	if err != nil {
		return nil, err
	}
	return memory.New(c.Dir,
		memory.WithLocker(locker),
		memory.WithLogger(logger),
		memory.WithSearchLimit(c.SearchLimit),
		memory.WithMinScore(c.MinScore),
		memory.WithPreviewWidth(c.PreviewWidth),
		memory.WithDigestBudget(c.DigestBudget),
	)
}
