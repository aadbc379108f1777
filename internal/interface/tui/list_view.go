package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/proofa/internal/core/db"
)

type workspaceListItem struct {
	ws db.Workspace
}

func (i workspaceListItem) FilterValue() string {
	return i.ws.Name + " " + i.ws.ID
}

func (i workspaceListItem) Title() string {
	if i.ws.Name != "" {
		return i.ws.Name
	}
	return i.ws.ID
}

func (i workspaceListItem) Description() string {
	desc := fmt.Sprintf("%s | %d/100", statusText(i.ws.Status), i.ws.CurrentScore)
	if !i.ws.UpdatedAt.IsZero() {
		desc += " | Updated: " + humanize.Time(i.ws.UpdatedAt)
	}
	if !i.ws.LastOpenedAt.IsZero() {
		desc += " | Opened: " + humanize.Time(i.ws.LastOpenedAt)
	}
	return desc
}

// Custom delegate to highlight workspaces with an unsent draft
type workspaceDelegate struct {
	list.DefaultDelegate
}

func (d workspaceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(workspaceListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := it.Title()
	desc := it.Description()
	if it.ws.HasDraft {
		title += " ✎"
	}

	switch {
	case index == m.Index():
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	case it.ws.HasDraft:
		title = itemStyle.Render(draftItemStyle.Render(title))
		desc = itemStyle.Render(desc)
	default:
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func createWorkspaceList(workspaces []db.Workspace, width, height int) list.Model {
	items := make([]list.Item, len(workspaces))
	for i, ws := range workspaces {
		items[i] = workspaceListItem{ws: ws}
	}

	delegate := workspaceDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(items, delegate, width, height-1) // Reserve 1 line for help text only
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)

	return l
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While filtering, the list owns every key
	if m.listReady && m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "?":
		m.prevMode = listView
		m.mode = helpView
		return m, nil

	case "r":
		m.err = nil
		return m, loadWorkspaces(m.deps)

	case "enter":
		if !m.listReady {
			return m, nil
		}
		if selected, ok := m.list.SelectedItem().(workspaceListItem); ok {
			m.mode = workspaceView
			m.opening = true
			m.openingID = selected.ws.ID
			m.banner = ""
			m.flash = ""
			return m, tea.Batch(openWorkspace(m.deps, selected.ws.ID), m.spinner.Tick)
		}
		return m, nil
	}

	if !m.listReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) viewList() string {
	if !m.listReady {
		return "Loading workspaces..."
	}

	helpText := "↑/k up • ↓/j down • enter open • / filter • r refresh • q quit • ? more"
	if m.listStale != nil {
		helpText = flashStyle.Render("offline: showing cached list") + " • " + helpText
	}

	if len(m.workspaces) == 0 {
		return "No workspaces yet. Create one with 'proofa new --name <name> --oath'.\n\n" + helpText
	}

	return m.list.View() + "\n" + helpStyle.Render(helpText)
}
