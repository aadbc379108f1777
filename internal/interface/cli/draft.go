package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	draftClear bool
)

var draftCmd = &cobra.Command{
	Use:   "draft [workspace-id] [text...]",
	Short: "Show, set or clear unsent drafts",
	Long: `Drafts are the unsent composer text of a workspace, saved locally.

With no arguments, lists every saved draft. With a workspace ID, prints its
draft. With text, replaces it.

Examples:
  proofa draft
  proofa draft 5f2a
  proofa draft 5f2a "second pass on the palette"
  proofa draft 5f2a --clear`,
	Args: cobra.ArbitraryArgs,
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.Flags().BoolVar(&draftClear, "clear", false, "Delete the draft")
}

func runDraft(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		drafts, err := a.db.ListDrafts()
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			fmt.Println("No drafts.")
			return nil
		}
		for _, d := range drafts {
			fmt.Printf("%s  (%s)\n    %s\n", d.SessionID, humanize.Time(d.UpdatedAt), truncate(d.Content, 80))
		}
		return nil
	}

	id := args[0]
	switch {
	case draftClear:
		if err := a.db.DeleteDraft(id); err != nil {
			return err
		}
		fmt.Println("Draft cleared.")
	case len(args) > 1:
		if err := a.db.SaveDraft(id, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Println("Draft saved.")
	default:
		text, err := a.db.LoadDraft(id)
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Println("No draft.")
			return nil
		}
		fmt.Println(text)
	}
	return nil
}
