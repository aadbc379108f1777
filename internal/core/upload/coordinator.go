// Package upload stages a single file for the next outgoing message and
// tracks its upload.
package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/neilberkman/proofa/pkg/judgewire"
)

// Phase is a step of the staged upload lifecycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStaging
	PhaseUploading
	PhaseStaged
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStaging:
		return "staging"
	case PhaseUploading:
		return "uploading"
	case PhaseStaged:
		return "staged"
	case PhaseError:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

var (
	ErrNothingSelected = errors.New("no file selected")
	ErrBusy            = errors.New("upload already in progress")
)

// State is a snapshot of the staged upload.
type State struct {
	Phase     Phase
	Path      string
	FileName  string
	Size      int64
	MIME      string
	LocalURL  string
	RemoteURL string
	FileID    string
	Progress  int
	Err       error
}

// PreviewURL is the remote URL once known, the local preview before that.
func (s State) PreviewURL() string {
	if s.RemoteURL != "" {
		return s.RemoteURL
	}
	return s.LocalURL
}

// Attachment describes the staged file as a message attachment. Only a
// staged upload has one.
func (s State) Attachment() *judgewire.Attachment {
	if s.Phase != PhaseStaged {
		return nil
	}
	return &judgewire.Attachment{
		ID:          s.FileID,
		DisplayName: s.FileName,
		URL:         s.PreviewURL(),
		Kind: judgewire.InferKind(judgewire.KindHints{
			MIME:     s.MIME,
			URL:      s.RemoteURL,
			FileName: s.FileName,
		}),
	}
}

// Result is what the backend returns for a finished upload
type Result struct {
	FileID      string
	URL         string
	StoragePath string
}

// Uploader sends a file to the backend, reporting progress from 0 to 100.
type Uploader interface {
	Upload(ctx context.Context, path string, onProgress func(percent int)) (Result, error)
}

// Coordinator owns the single staged upload of a workspace.
//
// Every Select and Clear starts a new generation; completions and progress
// reports from an older generation are discarded.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	gen      uint64
	onChange func(State)
	logger   *zap.Logger
}

// NewCoordinator creates an idle coordinator
func NewCoordinator(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{logger: logger}
}

// OnChange registers a callback invoked after every state change. It runs
// outside the coordinator's lock.
func (c *Coordinator) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// State returns the current snapshot
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Select stages path, replacing any previous file. The local preview URL is
// available as soon as Select returns.
func (c *Coordinator) Select(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", abs)
	}

	name := filepath.Base(abs)
	next := State{
		Phase:    PhaseStaging,
		Path:     abs,
		FileName: name,
		Size:     info.Size(),
		MIME:     mime.TypeByExtension(filepath.Ext(name)),
		LocalURL: (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(),
	}

	c.mu.Lock()
	c.gen++
	c.state = next
	c.mu.Unlock()

	c.logger.Debug("file staged", zap.String("file", name), zap.Int64("size", info.Size()))
	c.notify(next)
	return nil
}

// Start uploads the staged file in the background. The returned channel
// receives the final state and is then closed. A result for a file that was
// replaced or cleared meanwhile is dropped and the channel is closed empty.
func (c *Coordinator) Start(ctx context.Context, u Uploader) (<-chan State, error) {
	c.mu.Lock()
	switch c.state.Phase {
	case PhaseStaging:
	case PhaseUploading:
		c.mu.Unlock()
		return nil, ErrBusy
	default:
		c.mu.Unlock()
		return nil, ErrNothingSelected
	}
	gen := c.gen
	path := c.state.Path
	c.state.Phase = PhaseUploading
	c.state.Progress = 0
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)

	done := make(chan State, 1)
	go func() {
		defer close(done)

		res, err := u.Upload(ctx, path, func(percent int) {
			c.progress(gen, percent)
		})

		final, ok := c.finish(gen, res, err)
		if !ok {
			c.logger.Debug("discarding stale upload result", zap.String("path", path))
			return
		}
		c.notify(final)
		done <- final
	}()
	return done, nil
}

func (c *Coordinator) progress(gen uint64, percent int) {
	percent = max(0, min(100, percent))

	c.mu.Lock()
	if gen != c.gen || c.state.Phase != PhaseUploading || percent <= c.state.Progress {
		c.mu.Unlock()
		return
	}
	c.state.Progress = percent
	snapshot := c.state
	c.mu.Unlock()

	c.notify(snapshot)
}

func (c *Coordinator) finish(gen uint64, res Result, err error) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state.Phase != PhaseUploading {
		return State{}, false
	}
	if err != nil {
		c.state.Phase = PhaseError
		c.state.Err = err
		c.logger.Warn("upload failed", zap.String("file", c.state.FileName), zap.Error(err))
		return c.state, true
	}
	c.state.Phase = PhaseStaged
	c.state.Progress = 100
	c.state.FileID = res.FileID
	c.state.RemoteURL = res.URL
	c.logger.Debug("upload staged", zap.String("file", c.state.FileName), zap.String("upload_id", res.FileID))
	return c.state, true
}

// Take consumes a staged upload and returns its attachment, leaving the
// coordinator idle. It returns false when nothing is staged.
func (c *Coordinator) Take() (*judgewire.Attachment, bool) {
	att, _ := c.Consume()
	return att, att != nil
}

// Consume reports the phase it found and, only when that phase is staged,
// consumes the file. The check and the consume happen under one lock.
func (c *Coordinator) Consume() (*judgewire.Attachment, Phase) {
	c.mu.Lock()
	phase := c.state.Phase
	att := c.state.Attachment()
	if att == nil {
		c.mu.Unlock()
		return nil, phase
	}
	c.gen++
	c.state = State{}
	c.mu.Unlock()

	c.notify(State{})
	return att, phase
}

// Clear discards whatever is staged or uploading.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.gen++
	c.state = State{}
	c.mu.Unlock()

	c.notify(State{})
}

func (c *Coordinator) notify(s State) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
