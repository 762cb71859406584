package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/memory"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove entries by age or count, per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		req := memory.PruneRequest{}
		req.Category, _ = cmd.Flags().GetString("category")
		req.KeyGlob, _ = cmd.Flags().GetString("glob")
		req.MaxAgeDays, _ = cmd.Flags().GetInt("max-age-days")
		req.MaxEntries, _ = cmd.Flags().GetInt("max-entries")
		req.DryRun, _ = cmd.Flags().GetBool("dry-run")
		req.Confirm, _ = cmd.Flags().GetBool("confirm")

		result, err := store.Prune(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOut {
			return emitJSON(result)
		}

		for _, c := range memory.Categories() {
			count, ok := result.Pruned[c]
			if !ok || count == 0 {
				continue
			}
			fmt.Printf("%s %s\n", accentStyle.Render(string(c)),
				mutedStyle.Render(fmt.Sprintf("%d entries: %v", count, result.RemovedKeys[c])))
		}
		for _, c := range result.Skipped {
			fmt.Printf("%s %s\n", accentStyle.Render(string(c)), mutedStyle.Render("skipped (read-only)"))
		}
		printStatus(result.Status)
		return nil
	},
}

func init() {
	pruneCmd.Flags().String("category", "", "restrict pruning to one category")
	pruneCmd.Flags().String("glob", "", "only keys matching this glob")
	pruneCmd.Flags().Int("max-age-days", 0, "remove entries older than this many days")
	pruneCmd.Flags().Int("max-entries", 0, "keep only this many newest entries per category")
	pruneCmd.Flags().Bool("dry-run", false, "report what would be removed without changing anything")
	pruneCmd.Flags().Bool("confirm", false, "actually prune")
	rootCmd.AddCommand(pruneCmd)
}
