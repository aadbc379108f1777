package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/neilberkman/proofa/internal/core/config"
	"github.com/neilberkman/proofa/internal/core/workspace"
	"github.com/neilberkman/proofa/internal/interface/tui"
)

var openCmd = &cobra.Command{
	Use:   "open <workspace-id>",
	Short: "Open a workspace in the interactive UI",
	Long:  "Open a workspace straight into the collaboration view, skipping the workspace list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runTUI(cmd *cobra.Command, id string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.New(tui.Deps{
		Remote: a.api,
		Cache:  a.db,
		Open: func(id string) *workspace.Workspace {
			return a.workspace(id, true)
		},
		Modes:   config.Modes,
		Timeout: a.cfg.RequestTimeout,
	}, id)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)

	finalModel, err := p.Run()
	if m, ok := finalModel.(tui.Model); ok {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
