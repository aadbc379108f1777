package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		if m.prevMode == listView {
			return m, tea.Quit
		}
	}

	// Any other key returns to where help was opened
	m.mode = m.prevMode
	return m, nil
}

func (m Model) viewHelp() string {
	help := `
Proofa - Help
═════════════

WORKSPACE LIST
──────────────
  ↑/↓, j/k     Navigate workspaces
  Enter        Open workspace
  /            Filter by name
  r            Refresh from the server
  ?            Show this help
  q            Quit

WORKSPACE
─────────
  Enter        Send the message (and the attached file)
  ctrl+j       New line
  ctrl+o       Attach a file by path
  Drop/paste   Dropping a file on the terminal attaches it
  ctrl+x       Remove the attached file
  ctrl+t       Certify (score 80 or more)
  ctrl+n       Switch interaction mode
  ctrl+y       Copy the origin hash
  ctrl+d       Dismiss the banner
  PgUp/PgDn    Scroll the conversation
  esc          Back to workspace list
  f1           Show this help

CERTIFIED WORKSPACE
───────────────────
  b            Back to the collaboration view
  y            Copy the origin hash
  esc          Back to workspace list

Drafts are saved as you type and restored when you come back.

Press any key to return
`

	return helpStyle.Render(help)
}
