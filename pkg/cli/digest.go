package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/memory"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Render a token-budgeted markdown briefing of the store",
	Long: `Renders stored memory as markdown suitable for injection into an
agent prompt, newest entries first, stopping at the token budget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		categories, _ := cmd.Flags().GetStringSlice("category")
		budget, _ := cmd.Flags().GetInt("budget")

		result, err := store.Digest(cmd.Context(), memory.DigestRequest{
			Categories: categories,
			Budget:     budget,
		})
		if err != nil {
			return err
		}
		if jsonOut {
			return emitJSON(result)
		}
		if result.Markdown != "" {
			fmt.Print(result.Markdown)
		}
		note := result.Message
		if result.Truncated {
			note += " (truncated at budget)"
		}
		fmt.Println(mutedStyle.Render(note))
		return nil
	},
}

func init() {
	digestCmd.Flags().StringSlice("category", nil, "restrict the digest to these categories")
	digestCmd.Flags().Int("budget", 0, "token budget (default 1200)")
	rootCmd.AddCommand(digestCmd)
}
