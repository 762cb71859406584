package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/memory"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search entries with fuzzy or exact matching",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		categories, _ := cmd.Flags().GetStringSlice("category")
		exact, _ := cmd.Flags().GetBool("exact")
		limit, _ := cmd.Flags().GetInt("limit")
		minScore, _ := cmd.Flags().GetFloat64("min-score")

		result, err := store.Search(cmd.Context(), memory.SearchRequest{
			Query:      args[0],
			Categories: categories,
			Exact:      exact,
			Limit:      limit,
			MinScore:   minScore,
		})
		if err != nil {
			return err
		}
		if jsonOut {
			return emitJSON(result)
		}
		if !result.Success {
			printStatus(result.Status)
			return nil
		}
		for _, m := range result.Results {
			fmt.Printf("%s %s %s  %s\n",
				mutedStyle.Render(fmt.Sprintf("%.2f", m.Score)),
				accentStyle.Render(string(m.Category)),
				keyStyle.Render(m.Entry.Key),
				m.Entry.Value)
		}
		fmt.Println(mutedStyle.Render(result.Message))
		return nil
	},
}

func init() {
	searchCmd.Flags().StringSlice("category", nil, "restrict the search to these categories")
	searchCmd.Flags().Bool("exact", false, "substring matching only, no fuzzy scoring")
	searchCmd.Flags().Int("limit", 0, "maximum results (default 20)")
	searchCmd.Flags().Float64("min-score", 0, "fuzzy score threshold in (0, 1]")
	rootCmd.AddCommand(searchCmd)
}
