package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/proofa/internal/core/db"
	"github.com/neilberkman/proofa/internal/core/dropzone"
	"github.com/neilberkman/proofa/internal/core/upload"
	"github.com/neilberkman/proofa/internal/core/workspace"
)

type viewMode int

const (
	listView viewMode = iota
	workspaceView
	helpView
)

// Deps is what the TUI needs from the rest of the program
type Deps struct {
	Remote  workspace.Lister
	Cache   workspace.Catalog
	Open    func(id string) *workspace.Workspace
	Modes   []string
	Timeout time.Duration
}

type Model struct {
	deps     Deps
	mode     viewMode
	prevMode viewMode
	width    int
	height   int
	err      error

	// Workspace list
	list       list.Model
	listReady  bool
	workspaces []db.Workspace
	listStale  error
	startID    string

	// Open workspace
	ws        *workspace.Workspace
	opening   bool
	openingID string
	viewport  viewport.Model
	composer  textarea.Model
	pathInput textinput.Model
	attaching bool
	spinner   spinner.Model
	sending   int

	// Drop target over the composer
	drop       *dropzone.Controller
	dropRegion region

	banner     string
	bannerSeq  int
	flash      string
	flashIsErr bool
	flashSeq   int
}

// New creates the TUI. With startID set the workspace opens immediately.
func New(deps Deps, startID string) Model {
	if deps.Timeout <= 0 {
		deps.Timeout = time.Minute
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = judgeStyle

	ta := textarea.New()
	ta.Placeholder = "Describe your next creative decision..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(composerLines)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	ti := textinput.New()
	ti.Placeholder = "/path/to/file"
	ti.Prompt = "Attach: "

	mode := listView
	if startID != "" {
		mode = workspaceView
	}

	return Model{
		deps:      deps,
		mode:      mode,
		startID:   startID,
		opening:   startID != "",
		openingID: startID,
		spinner:   s,
		composer:  ta,
		pathInput: ti,
		drop:      &dropzone.Controller{},
	}
}

func (m Model) Init() tea.Cmd {
	if m.startID != "" {
		return tea.Batch(openWorkspace(m.deps, m.startID), m.spinner.Tick)
	}
	return loadWorkspaces(m.deps)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.list.SetSize(msg.Width, msg.Height-1)
		}
		m = m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.closeWorkspace()
			return m, tea.Quit
		}

		switch m.mode {
		case listView:
			return m.updateList(msg)
		case workspaceView:
			return m.updateWorkspace(msg)
		case helpView:
			return m.updateHelp(msg)
		}

	case tea.MouseMsg:
		if m.mode == workspaceView {
			return m.updateWorkspaceMouse(msg)
		}
		if m.mode == listView && m.listReady {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

	case workspacesLoadedMsg:
		m.workspaces = msg.workspaces
		m.listStale = msg.err
		m.err = nil
		m.list = createWorkspaceList(msg.workspaces, m.width, m.height)
		m.listReady = true
		return m, nil

	case workspaceOpenedMsg:
		return m.workspaceOpened(msg)

	case workspaceUpdateMsg:
		return m.workspaceUpdated(msg)

	case workspaceClosedMsg:
		return m, nil

	case sendDoneMsg:
		m.sending--
		if msg.err != nil {
			return m.setFlash(explain(msg.err), true)
		}
		m = m.refreshTranscript()
		return m, nil

	case attachStartedMsg:
		if msg.err != nil {
			return m.setFlash("Could not attach "+msg.path+": "+msg.err.Error(), true)
		}
		return m, m.spinner.Tick

	case certifyDoneMsg:
		if msg.err != nil {
			return m.setFlash(explain(msg.err), true)
		}
		text := "Workspace certified."
		if msg.message != "" {
			text = msg.message
		}
		m = m.layout()
		return m.setFlash(text, false)

	case copiedMsg:
		if msg.err != nil {
			return m.setFlash("Clipboard unavailable: "+msg.err.Error(), true)
		}
		return m.setFlash(msg.what+" copied to clipboard", false)

	case clearBannerMsg:
		if msg.seq == m.bannerSeq {
			m.banner = ""
			m = m.layout()
		}
		return m, nil

	case clearFlashMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.err != nil && m.mode == listView {
		return errorStyle.Render("Error: "+explain(m.err)) + "\n\nPress r to retry, q to quit"
	}

	switch m.mode {
	case listView:
		return m.viewList()
	case workspaceView:
		return m.viewWorkspace()
	case helpView:
		return m.viewHelp()
	}

	return ""
}

// busy reports whether something is pending that the spinner should show
func (m Model) busy() bool {
	if m.opening || m.sending > 0 {
		return true
	}
	if m.ws != nil {
		return m.ws.InFlight() > 0 || m.ws.Upload().Phase == upload.PhaseUploading
	}
	return false
}

func (m Model) setFlash(text string, isErr bool) (Model, tea.Cmd) {
	m.flashSeq++
	m.flash = text
	m.flashIsErr = isErr
	return m, clearFlashAfter(m.flashSeq)
}

// closeWorkspace persists the draft and stops the workspace
func (m *Model) closeWorkspace() {
	if m.ws == nil {
		return
	}
	m.ws.SetDraft(m.composer.Value())
	m.ws.Close()
	m.ws = nil
}

// Close saves the draft of the open workspace, if any, and stops it
func (m Model) Close() {
	m.closeWorkspace()
}
