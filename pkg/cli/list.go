package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/memory"
)

var listCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "Summarize stored entries with truncated previews",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		req := memory.ListRequest{}
		if len(args) == 1 {
			req.Category = args[0]
		}
		req.KeyGlob, _ = cmd.Flags().GetString("glob")
		req.IncludeTimestamps, _ = cmd.Flags().GetBool("timestamps")

		result, err := store.List(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOut {
			return emitJSON(result)
		}

		for _, listing := range result.Categories {
			header := fmt.Sprintf("%s %s",
				accentStyle.Render(string(listing.Category)),
				mutedStyle.Render(fmt.Sprintf("(%s, %d entries)", listing.Policy, listing.Count)))
			if listing.Corrupt {
				header += " " + failStyle.Render("[corrupt document, serving empty]")
			}
			fmt.Println(header)
			for _, e := range listing.Entries {
				line := fmt.Sprintf("  %s  %s", keyStyle.Render(e.Key), e.Preview)
				if e.Timestamp != nil {
					line += "  " + mutedStyle.Render(e.Timestamp.Format("2006-01-02 15:04"))
				}
				fmt.Println(line)
			}
		}
		fmt.Println(mutedStyle.Render(result.Message))
		return nil
	},
}

func init() {
	listCmd.Flags().String("glob", "", "only keys matching this glob (e.g. 'db-*')")
	listCmd.Flags().Bool("timestamps", false, "include entry timestamps")
	rootCmd.AddCommand(listCmd)
}
