package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/neilberkman/proofa/internal/core/api"
	"github.com/neilberkman/proofa/internal/core/export"
	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/internal/core/push"
	"github.com/neilberkman/proofa/internal/core/upload"
	"github.com/neilberkman/proofa/internal/core/workspace"
)

const (
	composerLines     = 3
	composerBoxHeight = composerLines + 2 // rounded border
	headerHeight      = 3                 // two HUD lines and a rule
	footerHeight      = 2                 // flash line and key help
)

func (m Model) bannerHeight() int {
	if m.banner == "" {
		return 0
	}
	return 1
}

// attachRowY is the screen row of the attachment line above the composer
func (m Model) attachRowY() int {
	return headerHeight + m.viewport.Height + m.bannerHeight()
}

// layout sizes the viewport and composer to the window
func (m Model) layout() Model {
	if m.width == 0 || m.height == 0 {
		return m
	}

	vpHeight := m.height - headerHeight - footerHeight - 1 - composerBoxHeight - m.bannerHeight()
	vpHeight = max(vpHeight, 3)
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.width, vpHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}

	m.composer.SetWidth(max(m.width-2, 10))
	m.pathInput.Width = max(m.width-12, 10)
	return m.refreshTranscript()
}

func (m Model) refreshTranscript() Model {
	if m.ws == nil || m.viewport.Width == 0 {
		return m
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(renderTranscript(m.ws.Messages(), m.viewport.Width))
	if atBottom {
		m.viewport.GotoBottom()
	}
	return m
}

func (m Model) workspaceOpened(msg workspaceOpenedMsg) (tea.Model, tea.Cmd) {
	if m.mode != workspaceView || m.ws != nil || !m.opening || msg.ws.ID() != m.openingID {
		// The user left before it finished loading
		msg.ws.Close()
		return m, nil
	}

	m.opening = false
	m.ws = msg.ws
	m.composer.SetValue(m.ws.Draft())
	m.composer.Focus()
	m = m.layout()
	m.viewport.GotoBottom()

	// A load error arrives as an update too; it is shown from there
	return m, tea.Batch(waitForUpdate(m.ws), textarea.Blink)
}

func (m Model) workspaceUpdated(msg workspaceUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.ws != m.ws {
		return m, nil
	}
	cmds := []tea.Cmd{waitForUpdate(m.ws)}

	u := msg.update
	switch u.Kind {
	case workspace.UpdateEligible:
		m.banner = u.Celebration
		if m.banner == "" {
			m.banner = fmt.Sprintf("Score %d/100: eligible for certification. Press ctrl+t to certify.", u.Score.Score)
		}
		m.bannerSeq++
		cmds = append(cmds, clearBannerAfter(m.bannerSeq))
		m = m.layout()

	case workspace.UpdateError:
		var cmd tea.Cmd
		m, cmd = m.setFlash(explain(u.Err), true)
		cmds = append(cmds, cmd)

	case workspace.UpdateUpload:
		if u.Upload.Phase == upload.PhaseError {
			var cmd tea.Cmd
			m, cmd = m.setFlash("Upload failed: "+explain(u.Upload.Err), true)
			cmds = append(cmds, cmd)
		}

	case workspace.UpdateDraft:
		if m.composer.Value() == "" {
			m.composer.SetValue(m.ws.Draft())
		}

	case workspace.UpdateStatus:
		m = m.layout()
	}

	m = m.refreshTranscript()
	return m, tea.Batch(cmds...)
}

func (m Model) updateWorkspace(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ws == nil {
		if msg.String() == "esc" || msg.String() == "q" {
			return m.backToList()
		}
		return m, nil
	}

	if m.attaching {
		return m.updatePathInput(msg)
	}

	if m.ws.Stage() != workspace.StageCollaboration {
		return m.updateStagePanel(msg)
	}

	// A pasted path is a dropped file
	if msg.Paste {
		if path, ok := pastedPath(string(msg.Runes)); ok {
			m.drop.Drop()
			m.dropRegion = regionNone
			return m, attachFile(m.ws, path)
		}
	}

	switch msg.String() {
	case "esc":
		if m.drop.Visible() {
			m.drop.Drop()
			m.dropRegion = regionNone
			return m, nil
		}
		return m.backToList()

	case "enter":
		return m.send()

	case "ctrl+o":
		m.attaching = true
		m.pathInput.Reset()
		m.composer.Blur()
		return m, m.pathInput.Focus()

	case "ctrl+x":
		m.ws.ClearAttachment()
		return m, nil

	case "ctrl+t":
		snap := m.ws.Score()
		if !snap.Eligible {
			return m.setFlash(fmt.Sprintf("Certification needs a score of 80 (now %d)", snap.Score), true)
		}
		return m, certify(m.ws)

	case "ctrl+y":
		return m.copyOriginHash()

	case "ctrl+n":
		m.ws.SetMode(nextMode(m.deps.Modes, m.ws.Mode()))
		return m.setFlash("Mode: "+m.ws.Mode(), false)

	case "ctrl+d":
		m.banner = ""
		m = m.layout()
		return m, nil

	case "f1":
		m.prevMode = workspaceView
		m.mode = helpView
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	before := m.composer.Value()
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	if m.composer.Value() != before {
		m.ws.SetDraft(m.composer.Value())
	}
	return m, cmd
}

// send takes the text and the staged file together before anything is
// redrawn; only the judge's reply is waited for in the background.
func (m Model) send() (tea.Model, tea.Cmd) {
	turn, err := m.ws.Submit()
	if err != nil {
		return m.setFlash(explain(err), true)
	}

	m.composer.Reset()
	m.sending++
	m.banner = ""
	m = m.layout()
	m.viewport.GotoBottom()
	return m, tea.Batch(deliverTurn(m.ws, turn), m.spinner.Tick)
}

func (m Model) updatePathInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.attaching = false
		m.pathInput.Blur()
		return m, m.composer.Focus()

	case "enter":
		m.attaching = false
		m.pathInput.Blur()
		path := strings.TrimSpace(m.pathInput.Value())
		if p, ok := pastedPath(path); ok {
			path = p
		}
		focus := m.composer.Focus()
		if path == "" {
			return m, focus
		}
		return m, tea.Batch(focus, attachFile(m.ws, path))
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) updateStagePanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "b":
		m.ws.BackToWorkspace()
		return m, nil
	case "y", "ctrl+y":
		return m.copyOriginHash()
	case "esc":
		return m.backToList()
	case "q":
		m.closeWorkspace()
		return m, tea.Quit
	case "f1", "?":
		m.prevMode = workspaceView
		m.mode = helpView
	}
	return m, nil
}

func (m Model) updateWorkspaceMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.ws == nil {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if m.ws.Stage() == workspace.StageCollaboration && !m.attaching {
		m = m.trackDrag(msg)
	}
	return m, nil
}

func (m Model) copyOriginHash() (tea.Model, tea.Cmd) {
	hash := m.ws.Session().OriginHash
	if hash == "" {
		return m.setFlash("This workspace has no origin hash yet", true)
	}
	return m, copyToClipboard("Origin hash", hash)
}

func (m Model) backToList() (tea.Model, tea.Cmd) {
	m.closeWorkspace()
	m.mode = listView
	m.opening = false
	m.attaching = false
	m.banner = ""
	m.drop.Drop()
	m.dropRegion = regionNone
	m.composer.Reset()
	return m, loadWorkspaces(m.deps)
}

func nextMode(modes []string, current string) string {
	if len(modes) == 0 {
		return current
	}
	for i, mode := range modes {
		if mode == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// explain turns errors into something a user can act on
func explain(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrUnauthorized):
		return "Session expired: set a fresh token and restart proofa"
	case errors.Is(err, workspace.ErrEmptyMessage):
		return "Type a message or attach a file first"
	case errors.Is(err, workspace.ErrUploadPending):
		return "Wait for the upload to finish"
	}
	return err.Error()
}

func (m Model) viewWorkspace() string {
	if m.ws == nil {
		return m.spinner.View() + " Opening workspace..."
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	if m.ws.Stage() != workspace.StageCollaboration {
		b.WriteString(m.viewStagePanel())
		b.WriteString("\n")
		b.WriteString(m.viewFooter("b back to workspace • y copy origin hash • esc workspaces • q quit"))
		return b.String()
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.banner != "" {
		b.WriteString(celebrationStyle.Render(truncateLine(m.banner, m.width-2)))
		b.WriteString("\n")
	}
	b.WriteString(m.viewAttachRow())
	b.WriteString("\n")
	b.WriteString(m.viewComposer())
	b.WriteString("\n")
	b.WriteString(m.viewFooter("enter send • ctrl+j newline • ctrl+o attach • ctrl+x remove file • ctrl+t certify • ctrl+n mode • esc back • f1 help"))
	return b.String()
}

func (m Model) viewHeader() string {
	session := m.ws.Session()
	snap := m.ws.Score()

	name := session.Name
	if name == "" {
		name = session.ID
	}
	badge := statusBadgeStyle
	if session.Status != models.StatusCollaborating {
		badge = certifiedBadgeStyle
	}
	line1 := titleStyle.Render(name) + " " + badge.Render(statusText(session.Status)) +
		" " + timestampStyle.Render(pushLabel(m.ws.PushStatus()))

	line2 := scoreStyle(snap.Score).Render(fmt.Sprintf("Score %d/100", snap.Score))
	if snap.Verdict != "" {
		line2 += "  " + snap.Verdict
	}
	if snap.Eligible && session.Status == models.StatusCollaborating {
		line2 += "  " + scoreHighStyle.Render("eligible to certify")
	}
	line2 += timestampStyle.Render("  mode: " + m.ws.Mode())
	if m.busy() {
		line2 += "  " + m.spinner.View()
		if n := m.ws.InFlight(); n > 0 {
			line2 += timestampStyle.Render(fmt.Sprintf(" judge is reviewing (%d)", n))
		}
	}

	return line1 + "\n" + line2 + "\n" + strings.Repeat("─", max(m.width, 1))
}

func (m Model) viewAttachRow() string {
	st := m.ws.Upload()
	switch st.Phase {
	case upload.PhaseStaging:
		return "  Preparing " + st.FileName + "..."
	case upload.PhaseUploading:
		return fmt.Sprintf("  %s Uploading %s %s %d%% of %s",
			m.spinner.View(), st.FileName, progressBar(st.Progress, 20), st.Progress, humanize.Bytes(uint64(st.Size)))
	case upload.PhaseStaged:
		att := st.Attachment()
		kind := "file"
		if att != nil {
			kind = string(att.Kind)
		}
		return "  " + chipStyle.Render(fmt.Sprintf("%s: %s (%s)", kind, st.FileName, humanize.Bytes(uint64(st.Size)))) +
			timestampStyle.Render("  "+truncateLine(st.PreviewURL(), max(m.width-40, 10))+"  ctrl+x remove")
	case upload.PhaseError:
		return "  " + errorStyle.Render(st.FileName+": "+explain(st.Err)) + timestampStyle.Render("  ctrl+o to pick again")
	}
	return helpStyle.Render("  ctrl+o attach a file, or drop it on the terminal")
}

func (m Model) viewComposer() string {
	width := max(m.width-2, 10)
	if m.drop.Visible() {
		return dropZoneStyle.Width(width).Height(composerLines).Render("\n⇩ Drop a file to attach it")
	}
	if m.attaching {
		return composerStyle.Width(width).Height(composerLines).Render(m.pathInput.View())
	}
	return composerStyle.Render(m.composer.View())
}

func (m Model) viewStagePanel() string {
	session := m.ws.Session()
	snap := m.ws.Score()

	var b strings.Builder
	switch m.ws.Stage() {
	case workspace.StageLicensing:
		b.WriteString(scoreHighStyle.Render("Licensing"))
		b.WriteString("\n\nThis work is certified and open for licensing.")
	default:
		b.WriteString(scoreHighStyle.Render("✓ Certified"))
		b.WriteString("\n\nAuthorship of this work is certified.")
	}
	b.WriteString(fmt.Sprintf("\n\nFinal score: %d/100", snap.Score))
	if snap.Verdict != "" {
		b.WriteString("  " + snap.Verdict)
	}
	if session.OriginHash != "" {
		b.WriteString("\nOrigin hash: " + session.OriginHash)
	}
	if !session.CreatedAt.IsZero() {
		b.WriteString("\nStarted: " + humanize.Time(session.CreatedAt))
	}

	panel := panelStyle.Width(max(m.width-4, 20)).Render(b.String())
	height := m.height - headerHeight - footerHeight
	return lipgloss.Place(m.width, max(height, lipgloss.Height(panel)), lipgloss.Center, lipgloss.Center, panel)
}

func (m Model) viewFooter(keys string) string {
	flash := ""
	if m.flash != "" {
		style := flashStyle
		if m.flashIsErr {
			style = errorStyle
		}
		flash = style.Render(truncateLine(m.flash, m.width))
	}
	return flash + "\n" + helpStyle.Render(truncateLine(keys, m.width))
}

// renderTranscript draws the messages for the viewport
func renderTranscript(msgs []models.Message, width int) string {
	if len(msgs) == 0 {
		return timestampStyle.Render("No messages yet. Describe your idea to the judge below.")
	}

	wrapWidth := max(width-4, 20)
	var b strings.Builder
	for i := range msgs {
		msg := msgs[i]

		var label string
		if msg.Role == models.RoleAssistant {
			label = judgeStyle.Render("▸ JUDGE")
		} else {
			label = userStyle.Render("▸ YOU")
		}
		b.WriteString(label)
		if !msg.CreatedAt.IsZero() {
			b.WriteString(" ")
			b.WriteString(timestampStyle.Render(humanize.Time(msg.CreatedAt)))
		}
		if msg.Origin == models.OriginOptimistic {
			b.WriteString(timestampStyle.Render(" · sent"))
		}

		analysis, hasAnalysis := msg.ResolvedAnalysis()
		if hasAnalysis && analysis.HasScore {
			b.WriteString("  ")
			b.WriteString(scoreStyle(analysis.Score).Render(fmt.Sprintf("%d/100", analysis.Score)))
			if analysis.Verdict != "" {
				b.WriteString(" " + analysis.Verdict)
			}
		}
		b.WriteString("\n")

		body := export.Body(msg)
		if body != "" {
			b.WriteString(wordwrap.String(body, wrapWidth))
			b.WriteString("\n")
		}
		if hasAnalysis && analysis.Reason != "" && body != analysis.Reason {
			b.WriteString(reasonStyle.Render(wordwrap.String(analysis.Reason, wrapWidth)))
			b.WriteString("\n")
		}
		if i < len(msgs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func statusText(s models.Status) string {
	switch s {
	case models.StatusCertified:
		return "CERTIFIED"
	case models.StatusLicensing:
		return "LICENSING"
	}
	return "COLLABORATING"
}

func pushLabel(s push.Status) string {
	switch s {
	case push.StatusConnected:
		return "● live"
	case push.StatusConnecting:
		return "○ connecting"
	case push.StatusError:
		return "✕ live updates failing"
	case push.StatusDisconnected:
		return "○ offline"
	}
	return ""
}

func progressBar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := width * percent / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncateLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if maxLen <= 3 || len([]rune(s)) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}
