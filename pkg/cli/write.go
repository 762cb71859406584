package cli

import (
	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/memory"
)

var writeCmd = &cobra.Command{
	Use:   "write <category> <key> <value>",
	Short: "Save or update an entry",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		reason, _ := cmd.Flags().GetString("reason")
		source, _ := cmd.Flags().GetString("context")
		confirm, _ := cmd.Flags().GetBool("confirm")

		result, err := store.Write(cmd.Context(), memory.WriteRequest{
			Category: args[0],
			Key:      args[1],
			Value:    args[2],
			Reason:   reason,
			Context:  source,
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
	writeCmd.Flags().String("reason", "", "why this is worth remembering")
	writeCmd.Flags().String("context", "", "where this came from")
	writeCmd.Flags().Bool("confirm", false, "apply a confirm-required write")
	rootCmd.AddCommand(writeCmd)
}
