package cli

import (
	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/memory"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <category> <key>",
	Short: "Remove an entry (always requires --confirm)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		confirm, _ := cmd.Flags().GetBool("confirm")
		result, err := store.Delete(cmd.Context(), memory.DeleteRequest{
			Category: args[0],
			Key:      args[1],
			Confirm:  confirm,
		})
		if err != nil {
			return err
		}
		if jsonOut {
			return emitJSON(result)
		}
		printStatus(result.Status)
		return nil
	},
}

func init() {
	deleteCmd.Flags().Bool("confirm", false, "actually delete")
	rootCmd.AddCommand(deleteCmd)
}
