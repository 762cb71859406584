package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	appconfig "github.com/entrhq/recall/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage recall configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file populated with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		if err := appconfig.WriteScaffold(path); err != nil {
			return err
		}
		if path == "" {
			p, err := appconfig.DefaultConfigPath()
			if err == nil {
				path = p
			}
		}
		fmt.Println(successStyle.Render("ok") + " wrote " + path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("path", "", "destination (default ~/.recall/config.yaml)")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
