package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// scaffold mirrors Config with durations as strings for readability.
type scaffold struct {
	Dir            string  `yaml:"dir"`
	LockBackend    string  `yaml:"lock_backend"`
	LockTimeout    string  `yaml:"lock_timeout"`
	LockStaleAfter string  `yaml:"lock_stale_after"`
	SearchLimit    int     `yaml:"search_limit"`
	MinScore       float64 `yaml:"min_score"`
	PreviewWidth   int     `yaml:"preview_width"`
	DigestBudget   int     `yaml:"digest_budget"`
	Debug          bool    `yaml:"debug"`
}

// WriteScaffold writes a config file at path populated with the
// defaults, creating parent directories as needed. It refuses to
// overwrite an existing file.
func WriteScaffold(path string) error {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("config: stat %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory for %s: %w", path, err)
	}

	cfg := Default()
	// Durations are written in their string form ("5s") so the file
	// stays hand-editable.
	b, err := yaml.Marshal(scaffold{
		Dir:            cfg.Dir,
		LockBackend:    cfg.LockBackend,
		LockTimeout:    cfg.LockTimeout.String(),
		LockStaleAfter: cfg.LockStaleAfter.String(),
		SearchLimit:    cfg.SearchLimit,
		MinScore:       cfg.MinScore,
		PreviewWidth:   cfg.PreviewWidth,
		DigestBudget:   cfg.DigestBudget,
		Debug:          cfg.Debug,
	})
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	header := []byte("# recall configuration. Values may be overridden by RECALL_* environment\n# variables and command-line flags.\n")
	if err := os.WriteFile(path, append(header, b...), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
