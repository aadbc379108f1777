package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/proofa/internal/core/db"
	"github.com/neilberkman/proofa/internal/core/workspace"
)

var (
	workspacesLimit int
)

var workspacesCmd = &cobra.Command{
	Use:     "workspaces",
	Aliases: []string{"ls"},
	Short:   "List your workspaces",
	Long: `List your workspaces, most recently opened first.

The list is fetched from the server and cached locally. When the server
cannot be reached the cached list is shown instead.

Examples:
  proofa workspaces
  proofa workspaces --limit 5`,
	RunE: runWorkspaces,
}

func init() {
	rootCmd.AddCommand(workspacesCmd)
	workspacesCmd.Flags().IntVar(&workspacesLimit, "limit", 20, "Maximum number of workspaces to display")
}

func runWorkspaces(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
	defer cancel()

	rows, err := workspace.Refresh(ctx, a.api, a.db)
	if err != nil {
		if rows == nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Warning: %s (showing cached list)\n", explain(err))
	}

	if len(rows) == 0 {
		fmt.Println("No workspaces yet. Create one with 'proofa new --name <name> --oath'.")
		return nil
	}

	if len(rows) > workspacesLimit {
		rows = rows[:workspacesLimit]
	}

	fmt.Printf("Showing %d workspace(s)\n\n", len(rows))
	for i, w := range rows {
		printWorkspace(i+1, w)
	}
	return nil
}

func printWorkspace(n int, w db.Workspace) {
	name := w.Name
	if name == "" {
		name = "(untitled)"
	}
	fmt.Printf("[%d] %s  %s\n", n, name, w.ID)
	fmt.Printf("    Status: %s   Score: %d/100\n", statusLabel(w.Status), w.CurrentScore)
	if w.OriginHash != "" {
		fmt.Printf("    Origin: %s\n", shortHash(w.OriginHash))
	}
	if !w.UpdatedAt.IsZero() {
		fmt.Printf("    Updated: %s\n", humanize.Time(w.UpdatedAt))
	}
	if !w.LastOpenedAt.IsZero() {
		fmt.Printf("    Opened: %s\n", humanize.Time(w.LastOpenedAt))
	}
	if w.HasDraft {
		fmt.Println("    Unsent draft")
	}
	fmt.Println()
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return h
}

// truncate collapses whitespace and cuts s at a word boundary
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}

	cut := s[:maxLen]
	if lastSpace := strings.LastIndex(cut, " "); lastSpace > maxLen-20 {
		cut = cut[:lastSpace]
	}
	return cut + "..."
}
