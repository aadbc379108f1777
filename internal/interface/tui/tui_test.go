package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/proofa/internal/core/api"
	"github.com/neilberkman/proofa/internal/core/db"
	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/internal/core/upload"
	"github.com/neilberkman/proofa/internal/core/workspace"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

func TestPastedPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "my sketch.png")
	if err := os.WriteFile(file, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", file, file, true},
		{"single quoted", "'" + file + "'", file, true},
		{"double quoted", `"` + file + `"`, file, true},
		{"escaped spaces", strings.ReplaceAll(file, " ", `\ `), file, true},
		{"file url", "file://" + strings.ReplaceAll(file, " ", "%20"), file, true},
		{"trailing newline trimmed", file + "\n", file, true},
		{"relative", "my sketch.png", "", false},
		{"directory", dir, "", false},
		{"missing", filepath.Join(dir, "nope.png"), "", false},
		{"multi line text", file + "\n" + file, "", false},
		{"empty", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pastedPath(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("pastedPath(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRenderTranscript(t *testing.T) {
	empty := renderTranscript(nil, 80)
	if !strings.Contains(empty, "No messages yet") {
		t.Errorf("expected empty-state text, got %q", empty)
	}

	msgs := []models.Message{
		{ID: "m1", Role: models.RoleUser, Content: "A poster in teal and rust", CreatedAt: time.Now().Add(-time.Hour)},
		{
			ID:      "m2",
			Role:    models.RoleAssistant,
			Content: "Nice palette.",
			Analysis: &judgewire.Analysis{
				Score: 85, HasScore: true, Verdict: "Approved", Reason: "Clear human direction",
			},
		},
	}
	out := renderTranscript(msgs, 80)

	for _, want := range []string{"YOU", "A poster in teal and rust", "JUDGE", "85/100", "Approved", "Nice palette.", "Clear human direction"} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "YOU") > strings.Index(out, "JUDGE") {
		t.Error("messages rendered out of order")
	}
}

func TestNextMode(t *testing.T) {
	modes := []string{"chat", "art", "video"}

	if got := nextMode(modes, "chat"); got != "art" {
		t.Errorf("chat -> %q, want art", got)
	}
	if got := nextMode(modes, "video"); got != "chat" {
		t.Errorf("video -> %q, want chat", got)
	}
	if got := nextMode(modes, "poetry"); got != "chat" {
		t.Errorf("unknown -> %q, want chat", got)
	}
	if got := nextMode(nil, "art"); got != "art" {
		t.Errorf("no modes -> %q, want art", got)
	}
}

func sizedModel(t *testing.T) Model {
	t.Helper()
	m := New(Deps{}, "")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func TestRegionAt(t *testing.T) {
	m := sizedModel(t)
	top := m.attachRowY()

	if got := m.regionAt(top); got != regionAttachRow {
		t.Errorf("row %d: got %v, want attach row", top, got)
	}
	if got := m.regionAt(top + 2); got != regionComposer {
		t.Errorf("row %d: got %v, want composer", top+2, got)
	}
	if got := m.regionAt(top + composerBoxHeight + 1); got != regionNone {
		t.Errorf("row below composer: got %v, want none", got)
	}
	if got := m.regionAt(1); got != regionNone {
		t.Errorf("header row: got %v, want none", got)
	}
}

func TestTrackDrag(t *testing.T) {
	m := sizedModel(t)
	top := m.attachRowY()
	motion := func(y int) tea.MouseMsg {
		return tea.MouseMsg{Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
	}

	m = m.trackDrag(motion(top))
	if !m.drop.Visible() {
		t.Fatal("overlay should show when a drag enters the attach row")
	}

	// Crossing into the text box keeps the overlay up
	m = m.trackDrag(motion(top + 2))
	if !m.drop.Visible() || m.drop.Count() != 1 {
		t.Fatalf("moving between child regions: visible=%v count=%d", m.drop.Visible(), m.drop.Count())
	}

	m = m.trackDrag(motion(2))
	if m.drop.Visible() {
		t.Error("overlay should hide once the drag leaves the composer")
	}

	m = m.trackDrag(motion(top + 1))
	m = m.trackDrag(tea.MouseMsg{Y: top + 1, Action: tea.MouseActionRelease})
	if m.drop.Visible() || m.dropRegion != regionNone {
		t.Error("release should reset the drop target")
	}
}

func TestListEnterOpensWorkspace(t *testing.T) {
	m := sizedModel(t)
	next, _ := m.Update(workspacesLoadedMsg{workspaces: []db.Workspace{
		{Session: models.Session{ID: "ws-1", Name: "Poster"}},
		{Session: models.Session{ID: "ws-2", Name: "Jingle"}, HasDraft: true},
	}})
	m = next.(Model)
	if !m.listReady || len(m.list.Items()) != 2 {
		t.Fatalf("list not built: ready=%v", m.listReady)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.mode != workspaceView || !m.opening || m.openingID != "ws-1" {
		t.Errorf("enter: mode=%v opening=%v id=%q", m.mode, m.opening, m.openingID)
	}
	if cmd == nil {
		t.Error("expected a command to open the workspace")
	}
}

func TestHelpReturnsToPreviousView(t *testing.T) {
	m := sizedModel(t)
	m.mode = helpView
	m.prevMode = workspaceView

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m = next.(Model)
	if m.mode != workspaceView {
		t.Errorf("mode = %v, want workspace view", m.mode)
	}
	if cmd != nil {
		t.Error("leaving help should not issue a command")
	}
}

func TestHelpers(t *testing.T) {
	if got := progressBar(50, 10); got != "█████░░░░░" {
		t.Errorf("progressBar(50, 10) = %q", got)
	}
	if got := progressBar(150, 4); got != "████" {
		t.Errorf("progressBar clamps: %q", got)
	}
	if got := truncateLine("hello world", 8); got != "hello..." {
		t.Errorf("truncateLine = %q", got)
	}
	if got := statusText(models.StatusCertified); got != "CERTIFIED" {
		t.Errorf("statusText = %q", got)
	}
}

// stubBackend answers every call at once and counts interact calls.
type stubBackend struct {
	mu       sync.Mutex
	interact int
}

func (b *stubBackend) GetSession(ctx context.Context, id string) (models.Session, error) {
	return models.Session{ID: id, Name: "Poster", Status: models.StatusCollaborating}, nil
}

func (b *stubBackend) GetHistory(ctx context.Context, id string) ([]judgewire.Record, error) {
	return nil, nil
}

func (b *stubBackend) Upload(ctx context.Context, path string, onProgress func(int)) (upload.Result, error) {
	onProgress(100)
	return upload.Result{FileID: "up-1", URL: "https://cdn.example/" + filepath.Base(path)}, nil
}

func (b *stubBackend) Interact(ctx context.Context, id string, req api.InteractRequest) (judgewire.InteractResult, error) {
	b.mu.Lock()
	b.interact++
	b.mu.Unlock()
	return judgewire.InteractResult{Reply: "noted"}, nil
}

func (b *stubBackend) Certify(ctx context.Context, id string) (api.CertifyResult, error) {
	return api.CertifyResult{Status: models.StatusCertified}, nil
}

func (b *stubBackend) interactCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.interact
}

// openedModel returns a sized model showing ws, as if it had just loaded
func openedModel(t *testing.T, ws *workspace.Workspace) Model {
	t.Helper()
	m := sizedModel(t)
	m.mode = workspaceView
	m.opening = true
	m.openingID = ws.ID()
	next, _ := m.Update(workspaceOpenedMsg{ws: ws})
	m = next.(Model)
	if m.ws != ws {
		t.Fatal("workspace was not adopted")
	}
	return m
}

func TestSendTakesTextAndFileTogether(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sketch.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	backend := &stubBackend{}
	ws := workspace.New("ws-1", workspace.Options{Backend: backend})
	defer ws.Close()

	done, err := ws.Attach(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if final := <-done; final.Phase != upload.PhaseStaged {
		t.Fatalf("upload ended in %s", final.Phase)
	}

	m := openedModel(t, ws)
	m.composer.SetValue("hello")
	ws.SetDraft("hello")

	next, cmd := m.send()
	m = next.(Model)

	// Nothing has been delivered yet, and the screen must not show an empty
	// composer next to a file that is still staged.
	if m.composer.Value() != "" {
		t.Errorf("composer = %q, want empty", m.composer.Value())
	}
	if phase := ws.Upload().Phase; phase == upload.PhaseStaged {
		t.Error("staged file must be taken together with the text")
	}
	msgs := ws.Messages()
	if len(msgs) != 1 || msgs[0].Content != "hello" || msgs[0].Attachment == nil {
		t.Errorf("transcript = %+v", msgs)
	}
	if backend.interactCalls() != 0 {
		t.Error("the judge is only called from the returned command")
	}
	if cmd == nil {
		t.Fatal("expected a command delivering the turn")
	}
}

func TestSendRefusedLeavesComposerAlone(t *testing.T) {
	ws := workspace.New("ws-1", workspace.Options{Backend: &stubBackend{}})
	defer ws.Close()

	m := openedModel(t, ws)
	next, _ := m.send()
	m = next.(Model)
	if m.sending != 0 || m.flash == "" || !m.flashIsErr {
		t.Errorf("empty send: sending=%d flash=%q", m.sending, m.flash)
	}
}

func TestKeystrokeSavesDraftImmediately(t *testing.T) {
	database, err := db.New(filepath.Join(t.TempDir(), "proofa.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	ws := workspace.New("ws-1", workspace.Options{Backend: &stubBackend{}, Drafts: database})
	defer ws.Close()

	m := openedModel(t, ws)
	for _, r := range "hi" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}

	got, err := database.LoadDraft("ws-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi" {
		t.Errorf("saved draft = %q, want %q", got, "hi")
	}
}
