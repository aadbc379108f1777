package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/proofa/internal/core/db"
	"github.com/neilberkman/proofa/internal/core/workspace"
)

type errMsg struct {
	err error
}

type workspacesLoadedMsg struct {
	workspaces []db.Workspace
	err        error // set when only the cached list could be shown
}

type workspaceOpenedMsg struct {
	ws  *workspace.Workspace
	err error
}

type workspaceUpdateMsg struct {
	ws     *workspace.Workspace
	update workspace.Update
}

type workspaceClosedMsg struct{}

type sendDoneMsg struct {
	err error
}

type attachStartedMsg struct {
	path string
	err  error
}

type certifyDoneMsg struct {
	message string
	err     error
}

type copiedMsg struct {
	what string
	err  error
}

type clearBannerMsg struct {
	seq int
}

type clearFlashMsg struct {
	seq int
}

func loadWorkspaces(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
		defer cancel()

		rows, err := workspace.Refresh(ctx, d.Remote, d.Cache)
		if err != nil && rows == nil {
			return errMsg{err}
		}
		return workspacesLoadedMsg{workspaces: rows, err: err}
	}
}

// openWorkspace builds and opens a workspace. A load failure still yields
// the workspace: it stays usable with an empty transcript.
func openWorkspace(d Deps, id string) tea.Cmd {
	return func() tea.Msg {
		ws := d.Open(id)
		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
		defer cancel()

		err := ws.Open(ctx)
		return workspaceOpenedMsg{ws: ws, err: err}
	}
}

// waitForUpdate blocks on the next workspace notification. It is re-issued
// after every update so exactly one reader drains the channel.
func waitForUpdate(ws *workspace.Workspace) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ws.Updates()
		if !ok {
			return workspaceClosedMsg{}
		}
		return workspaceUpdateMsg{ws: ws, update: u}
	}
}

// deliverTurn waits for the judge's reply to a turn already taken from the
// composer
func deliverTurn(ws *workspace.Workspace, turn *workspace.Turn) tea.Cmd {
	return func() tea.Msg {
		_, err := ws.Deliver(context.Background(), turn)
		return sendDoneMsg{err: err}
	}
}

func attachFile(ws *workspace.Workspace, path string) tea.Cmd {
	return func() tea.Msg {
		// Progress and the final state arrive as workspace updates
		_, err := ws.Attach(context.Background(), path)
		return attachStartedMsg{path: path, err: err}
	}
}

func certify(ws *workspace.Workspace) tea.Cmd {
	return func() tea.Msg {
		res, err := ws.Certify(context.Background())
		return certifyDoneMsg{message: res.Message, err: err}
	}
}

func copyToClipboard(what, text string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(text)
		return copiedMsg{what: what, err: err}
	}
}

func clearBannerAfter(seq int) tea.Cmd {
	return tea.Tick(10*time.Second, func(time.Time) tea.Msg {
		return clearBannerMsg{seq: seq}
	})
}

func clearFlashAfter(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	})
}
