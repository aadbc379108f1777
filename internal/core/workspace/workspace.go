// Package workspace runs one open authorship workspace: it seeds the
// transcript from history, merges push events and local turns into it, keeps
// the score current, and owns the composer, the staged upload and the draft.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neilberkman/proofa/internal/core/api"
	"github.com/neilberkman/proofa/internal/core/loader"
	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/internal/core/push"
	"github.com/neilberkman/proofa/internal/core/score"
	"github.com/neilberkman/proofa/internal/core/timeline"
	"github.com/neilberkman/proofa/internal/core/upload"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

var (
	ErrNotEligible   = errors.New("score is below the certification threshold")
	ErrEmptyMessage  = errors.New("nothing to send")
	ErrUploadPending = errors.New("wait for the upload to finish")
	ErrClosed        = errors.New("workspace is closed")
)

// Backend is the REST surface a workspace uses. *api.Client implements it.
type Backend interface {
	loader.Source
	upload.Uploader
	Interact(ctx context.Context, id string, req api.InteractRequest) (judgewire.InteractResult, error)
	Certify(ctx context.Context, id string) (api.CertifyResult, error)
}

// DraftStore persists composer text between runs. *db.DB implements it.
type DraftStore interface {
	SaveDraft(sessionID, content string) error
	LoadDraft(sessionID string) (string, error)
	DeleteDraft(sessionID string) error
}

// Subscriber delivers push events. *push.Client implements it.
type Subscriber interface {
	Run(ctx context.Context, workspaceID string, h push.Handlers) error
}

// Options configure a workspace. Backend is required.
type Options struct {
	Backend             Backend
	Drafts              DraftStore
	Push                Subscriber
	Mode                string
	CelebrationTemplate string
	Logger              *zap.Logger
	Now                 func() time.Time
}

// Workspace is one open session.
type Workspace struct {
	id      string
	backend Backend
	drafts  DraftStore
	sub     Subscriber
	logger  *zap.Logger
	now     func() time.Time
	tpl     string

	timeline *timeline.Reconciler
	scores   *score.Aggregator
	uploads  *upload.Coordinator
	composer Composer

	mu         sync.Mutex
	session    models.Session
	stage      Stage
	mode       string
	pushStatus push.Status
	earlyPush  []judgewire.Analysis
	loadErr    error
	closed     bool
	updates    chan Update
	stopPush   context.CancelFunc
	pushDone   chan struct{}
}

// New creates a workspace for id. Nothing is fetched until Open.
func New(id string, opts Options) *Workspace {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	mode := opts.Mode
	if mode == "" {
		mode = "chat"
	}

	w := &Workspace{
		id:       id,
		backend:  opts.Backend,
		drafts:   opts.Drafts,
		sub:      opts.Push,
		logger:   logger.With(zap.String("workspace", id)),
		now:      now,
		tpl:      opts.CelebrationTemplate,
		timeline: timeline.New(),
		scores:   score.NewAggregator(0),
		session:  models.Session{ID: id, Status: models.StatusCollaborating},
		mode:     mode,
		updates:  make(chan Update, 256),
	}
	w.uploads = upload.NewCoordinator(w.logger)
	w.uploads.OnChange(func(s upload.State) {
		w.emit(Update{Kind: UpdateUpload, Upload: s})
	})
	return w
}

// Open subscribes to push events, restores the draft and loads history.
// The subscription starts first so that events sent while history loads are
// buffered instead of lost. A load failure is returned and also reported
// once as an UpdateError; the workspace stays usable with an empty
// transcript.
func (w *Workspace) Open(ctx context.Context) error {
	w.startPush()
	w.restoreDraft()

	res, err := loader.New(w.backend, w.logger).Load(ctx, w.id)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if res.Session.ID != "" {
		w.session = res.Session
		w.stage = StageFor(res.Session.Status)
	}
	w.loadErr = err
	// Seeding under w.mu keeps handlePush from buffering a score-only event
	// after the buffer has been drained.
	w.scores.SetBase(res.Session.CurrentScore)
	w.timeline.Seed(res.History)
	early := w.earlyPush
	w.earlyPush = nil
	w.mu.Unlock()

	w.recompute()
	if len(early) > 0 {
		for _, a := range early {
			w.scores.ApplyPush(a, w.timeline.Len())
		}
		w.recompute()
	}

	if err != nil {
		w.logger.Warn("workspace load failed", zap.Error(err))
		w.emit(Update{Kind: UpdateError, Err: err})
		return err
	}
	w.logger.Info("workspace opened", zap.Int("messages", w.timeline.Len()))
	w.emit(Update{Kind: UpdateLoaded})
	return nil
}

func (w *Workspace) restoreDraft() {
	if w.drafts == nil {
		return
	}
	text, err := w.drafts.LoadDraft(w.id)
	if err != nil {
		w.logger.Warn("failed to restore draft", zap.Error(err))
		return
	}
	if text != "" {
		w.composer.Set(text)
		w.emit(Update{Kind: UpdateDraft})
	}
}

func (w *Workspace) startPush() {
	if w.sub == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	w.mu.Lock()
	w.stopPush = cancel
	w.pushDone = done
	w.mu.Unlock()

	go func() {
		defer close(done)
		err := w.sub.Run(ctx, w.id, push.Handlers{
			OnEvent:  w.handlePush,
			OnStatus: w.handlePushStatus,
		})
		if err != nil {
			w.logger.Warn("push subscription ended", zap.Error(err))
			w.emit(Update{Kind: UpdateError, Err: fmt.Errorf("live updates unavailable: %w", err)})
		}
	}()
}

func (w *Workspace) handlePushStatus(s push.Status) {
	w.mu.Lock()
	w.pushStatus = s
	w.mu.Unlock()
	w.emit(Update{Kind: UpdatePush, PushStatus: s})
}

// handlePush applies one analysis event. Events with text become transcript
// entries; score-only events refresh the aggregator.
func (w *Workspace) handlePush(ev judgewire.Event) {
	u, ok := push.Interpret(ev, w.now())
	if !ok {
		return
	}
	if w.isClosed() {
		return
	}

	if u.Message != nil {
		if w.timeline.Apply(*u.Message) {
			w.emit(Update{Kind: UpdateTranscript})
			w.recompute()
		}
		return
	}

	w.mu.Lock()
	if !w.timeline.Seeded() {
		w.earlyPush = append(w.earlyPush, u.Analysis)
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.scores.ApplyPush(u.Analysis, w.timeline.Len())
	w.recompute()
}

// recompute refreshes the score and fires the celebration on an upward
// threshold crossing.
func (w *Workspace) recompute() {
	snap, crossed := w.scores.Recompute(w.timeline.Messages())

	w.mu.Lock()
	w.session.CurrentScore = snap.Score
	session := w.session
	w.mu.Unlock()

	w.emit(Update{Kind: UpdateScore, Score: snap})
	if !crossed {
		return
	}

	text := ""
	if w.tpl != "" {
		var err error
		text, err = RenderCelebration(w.tpl, session, snap)
		if err != nil {
			w.logger.Warn("celebration template failed", zap.Error(err))
			text = ""
		}
	}
	w.logger.Info("workspace eligible for certification", zap.Int("score", snap.Score))
	w.emit(Update{Kind: UpdateEligible, Score: snap, Celebration: text})
}

// SetDraft updates the composer and persists it.
func (w *Workspace) SetDraft(text string) {
	w.composer.Set(text)
	if w.drafts == nil {
		return
	}
	if err := w.drafts.SaveDraft(w.id, text); err != nil {
		w.logger.Warn("failed to save draft", zap.Error(err))
	}
}

// Draft returns the current composer text
func (w *Workspace) Draft() string {
	return w.composer.Text()
}

// Attach stages a file and starts uploading it in the background. The
// returned channel yields the final upload state.
func (w *Workspace) Attach(ctx context.Context, path string) (<-chan upload.State, error) {
	if w.isClosed() {
		return nil, ErrClosed
	}
	if err := w.uploads.Select(path); err != nil {
		return nil, err
	}
	return w.uploads.Start(ctx, w.backend)
}

// ClearAttachment drops the staged or uploading file
func (w *Workspace) ClearAttachment() {
	w.uploads.Clear()
}

// Upload returns the staged upload state
func (w *Workspace) Upload() upload.State {
	return w.uploads.State()
}

// Turn is a user turn that has been taken from the composer and shown in the
// transcript but not yet answered.
type Turn struct {
	Message models.Message
	req     api.InteractRequest
	ticket  timeline.Ticket
}

// Submit takes the composer text and the staged file, clears both, appends
// the user's turn to the transcript and reserves the reply's place. It does
// no I/O; pass the turn to Deliver to reach the judge.
func (w *Workspace) Submit() (*Turn, error) {
	if w.isClosed() {
		return nil, ErrClosed
	}

	out, err := w.composer.Take(w.uploads)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	mode := w.mode
	w.mu.Unlock()

	prompt := out.Prompt()
	local := models.Message{
		ID:         "local-" + uuid.NewString(),
		Role:       models.RoleUser,
		Content:    prompt,
		Attachment: out.Attachment,
		Origin:     models.OriginOptimistic,
		CreatedAt:  w.now(),
	}
	w.timeline.AppendOptimistic(local)
	ticket := w.timeline.Reserve()
	w.emit(Update{Kind: UpdateTranscript})

	req := api.InteractRequest{Prompt: prompt, Mode: mode}
	if out.Attachment != nil && out.Attachment.ID != "" {
		req.UploadIDs = []string{out.Attachment.ID}
	}
	return &Turn{Message: local, req: req, ticket: ticket}, nil
}

// Deliver sends a submitted turn to the judge. The reply is appended after
// the replies of any earlier turns. On failure the user's turn stays in the
// transcript and the error is returned.
func (w *Workspace) Deliver(ctx context.Context, turn *Turn) (*models.Message, error) {
	res, err := w.backend.Interact(ctx, w.id, turn.req)
	if err != nil {
		w.timeline.Resolve(turn.ticket, nil)
		w.logger.Warn("send failed", zap.Error(err))
		w.emit(Update{Kind: UpdateError, Err: err})
		return nil, err
	}

	// Text typed while the reply was pending is the draft now; keep it
	if w.drafts != nil && w.composer.Text() == "" {
		if err := w.drafts.DeleteDraft(w.id); err != nil {
			w.logger.Warn("failed to delete draft", zap.Error(err))
		}
	}

	if w.isClosed() {
		return nil, ErrClosed
	}
	if res.Empty() {
		w.timeline.Resolve(turn.ticket, nil)
		return nil, nil
	}

	reply := models.Message{
		ID:        res.ID,
		Role:      models.RoleAssistant,
		Content:   res.Reply,
		Analysis:  res.Analysis,
		Origin:    models.OriginReply,
		CreatedAt: w.now(),
	}
	if reply.ID == "" {
		reply.ID = "reply-" + uuid.NewString()
	}
	if w.timeline.Resolve(turn.ticket, &reply) {
		w.emit(Update{Kind: UpdateTranscript})
	}
	w.recompute()
	return &reply, nil
}

// Send submits the composer contents and waits for the judge's reply.
func (w *Workspace) Send(ctx context.Context) (*models.Message, error) {
	turn, err := w.Submit()
	if err != nil {
		return nil, err
	}
	return w.Deliver(ctx, turn)
}

// SendText replaces the composer text and sends it
func (w *Workspace) SendText(ctx context.Context, text string) (*models.Message, error) {
	w.composer.Set(text)
	return w.Send(ctx)
}

// Certify asks the backend to certify the workspace. It refuses locally when
// the current score is below the threshold.
func (w *Workspace) Certify(ctx context.Context) (api.CertifyResult, error) {
	if w.isClosed() {
		return api.CertifyResult{}, ErrClosed
	}
	snap := w.scores.Current()
	if !snap.Eligible {
		return api.CertifyResult{}, fmt.Errorf("%w (%d/100)", ErrNotEligible, snap.Score)
	}

	res, err := w.backend.Certify(ctx, w.id)
	if err != nil {
		w.emit(Update{Kind: UpdateError, Err: err})
		return api.CertifyResult{}, err
	}

	w.mu.Lock()
	if w.session.Advance(res.Status) {
		w.stage = StageFor(w.session.Status)
	}
	w.mu.Unlock()

	w.logger.Info("workspace certified", zap.String("status", string(res.Status)))
	w.emit(Update{Kind: UpdateStatus})
	return res, nil
}

// SetMode changes the interact mode for later sends
func (w *Workspace) SetMode(mode string) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		return
	}
	w.mu.Lock()
	w.mode = mode
	w.mu.Unlock()
}

// Mode returns the interact mode
func (w *Workspace) Mode() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// BackToWorkspace shows the collaboration view. The session status is not
// touched.
func (w *Workspace) BackToWorkspace() {
	w.mu.Lock()
	w.stage = StageCollaboration
	w.mu.Unlock()
	w.emit(Update{Kind: UpdateStatus})
}

// Stage returns the stage being shown
func (w *Workspace) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// ID returns the workspace ID
func (w *Workspace) ID() string {
	return w.id
}

// Session returns the session as last known
func (w *Workspace) Session() models.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// LoadError returns the error from Open, if any
func (w *Workspace) LoadError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadErr
}

// PushStatus returns the live channel state
func (w *Workspace) PushStatus() push.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pushStatus
}

// Messages returns the transcript
func (w *Workspace) Messages() []models.Message {
	return w.timeline.Messages()
}

// Score returns the current score snapshot
func (w *Workspace) Score() score.Snapshot {
	return w.scores.Current()
}

// InFlight returns the number of sends awaiting a reply
func (w *Workspace) InFlight() int {
	return w.timeline.InFlight()
}

// Updates delivers change notifications. The channel is closed by Close.
// Notifications are dropped when the buffer is full; readers should treat
// them as "something changed" and read state through the accessors.
func (w *Workspace) Updates() <-chan Update {
	return w.updates
}

// Close stops the push subscription. Completions that arrive later are
// discarded.
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	stop, done := w.stopPush, w.pushDone
	close(w.updates)
	w.mu.Unlock()

	w.uploads.Clear()
	if stop != nil {
		stop()
		<-done
	}
	w.logger.Debug("workspace closed")
}

func (w *Workspace) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Workspace) emit(u Update) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.updates <- u:
	default:
		w.logger.Debug("dropping workspace update", zap.Stringer("kind", u.Kind))
	}
}
