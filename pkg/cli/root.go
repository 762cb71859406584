// Package cli implements the recall command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/logging"
	"github.com/entrhq/recall/pkg/memory"
)

const version = "0.1.0"

var (
	cfgFile string
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "recall - persistent, policy-gated memory for coding agents",
	Long: `recall is a category-partitioned key-value memory store with
cross-process file locking, confirmation workflows for sensitive
writes, and fuzzy search over stored entries.

Categories and their write policies:
  user-preferences, project-context, patterns   auto-save
  decisions, corrections                        confirm-required
  protocol-state                                read-only

Example:
  recall write user-preferences verbosity concise --reason "user asked"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.recall/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit raw JSON results")
	rootCmd.PersistentFlags().String("dir", "", "store directory (default ~/.recall/memory)")
	rootCmd.PersistentFlags().String("lock-backend", "", "lock backend: flock, lockfile, or memory")
	rootCmd.PersistentFlags().Duration("lock-timeout", 0, "lock acquisition budget")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	_ = viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("lock_backend", rootCmd.PersistentFlags().Lookup("lock-backend"))
	_ = viper.BindPFlag("lock_timeout", rootCmd.PersistentFlags().Lookup("lock-timeout"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".recall"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("RECALL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Register the remaining keys so RECALL_* variables reach Unmarshal.
	viper.SetDefault("search_limit", 0)
	viper.SetDefault("min_score", 0.0)
	viper.SetDefault("preview_width", 0)
	viper.SetDefault("digest_budget", 0)
	viper.SetDefault("lock_stale_after", 0)

	_ = viper.ReadInConfig()
}

// openStore resolves configuration and opens the memory store plus the
// session logger. Callers must Close the logger.
func openStore() (*memory.Store, *logging.SessionLogger, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, logErr := logging.NewSessionLogger(cfg.Debug)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging unavailable: %v\n", logErr)
	}

	store, err := cfg.OpenStore(logger.Logger)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	return store, logger, nil
}
