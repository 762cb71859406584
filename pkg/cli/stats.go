package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-category entry counts and sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		result, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOut {
			return emitJSON(result)
		}

		for _, cs := range result.Categories {
			line := fmt.Sprintf("%s %s %d entries, %d bytes",
				accentStyle.Render(string(cs.Category)),
				mutedStyle.Render("("+string(cs.Policy)+")"),
				cs.Count, cs.Bytes)
			if cs.Newest != nil {
				line += mutedStyle.Render(fmt.Sprintf(", newest %s", cs.Newest.Format("2006-01-02")))
			}
			fmt.Println(line)
		}
		printStatus(result.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
