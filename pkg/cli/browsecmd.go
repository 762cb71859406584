package cli

import (
	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/cli/browse"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively search and inspect stored memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		return browse.Run(store)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
