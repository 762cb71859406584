package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/recall/pkg/memory"
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

// emitJSON writes the raw result struct for scripting.
func emitJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printStatus renders the shared envelope. Soft failures (policy
// rejections, pending confirmations, lock contention) are domain
// outcomes: they print a warning and the process still exits 0.
func printStatus(st memory.Status) {
	if st.Success {
		fmt.Println(successStyle.Render("ok") + " " + st.Message)
		return
	}
	fmt.Println(warnStyle.Render("not applied") + " " + st.Message)
}

// printEntry renders one entry in full.
func printEntry(category memory.Category, e memory.Entry) {
	fmt.Printf("%s %s\n", accentStyle.Render(string(category)), keyStyle.Render(e.Key))
	fmt.Printf("  %s\n", e.Value)
	if e.Reason != "" {
		fmt.Printf("  %s %s\n", mutedStyle.Render("reason:"), e.Reason)
	}
	if e.Context != "" {
		fmt.Printf("  %s %s\n", mutedStyle.Render("context:"), e.Context)
	}
	fmt.Printf("  %s %s\n", mutedStyle.Render("updated:"), e.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
}
