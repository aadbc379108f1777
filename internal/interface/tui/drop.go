package tui

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// region is a drop-sensitive area of the composer. The attachment row and
// the text box are separate regions, so moving between them enters one
// before leaving the other and the drop target stays up.
type region int

const (
	regionNone region = iota
	regionAttachRow
	regionComposer
)

// regionAt maps a screen row to the composer region under it
func (m Model) regionAt(y int) region {
	top := m.attachRowY()
	switch {
	case y == top:
		return regionAttachRow
	case y > top && y <= top+composerBoxHeight:
		return regionComposer
	}
	return regionNone
}

// trackDrag feeds mouse drags over the composer into the drop controller.
// Terminals only report motion while a button is held, so motion is a drag.
func (m Model) trackDrag(msg tea.MouseMsg) Model {
	switch msg.Action {
	case tea.MouseActionMotion:
		next := m.regionAt(msg.Y)
		if next == m.dropRegion {
			return m
		}
		if next != regionNone {
			m.drop.Enter()
		}
		if m.dropRegion != regionNone {
			m.drop.Leave()
		}
		m.dropRegion = next

	case tea.MouseActionRelease:
		// Released without a file; the drag is over
		if m.dropRegion != regionNone || m.drop.Visible() {
			m.drop.Drop()
		}
		m.dropRegion = regionNone
	}
	return m
}

// pastedPath recognizes a pasted file path. Terminals paste the path of a
// file dropped onto the window, quoted or with escaped spaces depending on
// the emulator. Only absolute paths to existing regular files count.
func pastedPath(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "\n\r") {
		return "", false
	}

	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			s = s[1 : len(s)-1]
		}
	}

	if strings.HasPrefix(s, "file://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", false
		}
		s = u.Path
	} else {
		s = strings.ReplaceAll(s, `\ `, " ")
	}

	if strings.HasPrefix(s, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		s = filepath.Join(home, s[2:])
	}

	if !filepath.IsAbs(s) {
		return "", false
	}
	info, err := os.Stat(s)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return s, true
}
