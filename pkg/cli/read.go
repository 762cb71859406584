package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/recall/pkg/memory"
)

var readCmd = &cobra.Command{
	Use:   "read [category] [key]",
	Short: "Read entries: everything, one category, one key, or a key across categories",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		defer logger.Close()

		req := memory.ReadRequest{}
		switch len(args) {
		case 2:
			req.Category, req.Key = args[0], args[1]
		case 1:
			req.Category = args[0]
		}
		if key, _ := cmd.Flags().GetString("key"); key != "" {
			req.Key = key
		}
		req.Limit, _ = cmd.Flags().GetInt("limit")

		result, err := store.Read(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOut {
			return emitJSON(result)
		}
		renderRead(result)
		return nil
	},
}

func renderRead(result memory.ReadResult) {
	if !result.Success {
		printStatus(result.Status)
		return
	}
	switch {
	case result.Entry != nil:
		fmt.Printf("%s\n", keyStyle.Render(result.Entry.Key))
		fmt.Printf("  %s\n", result.Entry.Value)
		if result.Entry.Reason != "" {
			fmt.Printf("  %s %s\n", mutedStyle.Render("reason:"), result.Entry.Reason)
		}
		fmt.Printf("  %s %s\n", mutedStyle.Render("updated:"), result.Entry.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	case result.Entries != nil:
		for _, e := range result.Entries {
			fmt.Printf("%s = %s\n", keyStyle.Render(e.Key), e.Value)
		}
		fmt.Println(mutedStyle.Render(result.Message))
	case result.Matches != nil:
		for _, c := range memory.Categories() {
			if e, ok := result.Matches[c]; ok {
				printEntry(c, e)
			}
		}
	case result.All != nil:
		for _, c := range memory.Categories() {
			entries := result.All[c]
			if len(entries) == 0 {
				continue
			}
			fmt.Println(accentStyle.Render(string(c)))
			for _, e := range entries {
				fmt.Printf("  %s = %s\n", keyStyle.Render(e.Key), e.Value)
			}
		}
		fmt.Println(mutedStyle.Render(result.Message))
	default:
		printStatus(result.Status)
	}
}

func init() {
	readCmd.Flags().String("key", "", "look a key up across all categories")
	readCmd.Flags().Int("limit", 0, "cap entries returned per category")
	rootCmd.AddCommand(readCmd)
}
