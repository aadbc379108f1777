package workspace

import (
	"strings"
	"sync"

	"github.com/neilberkman/proofa/internal/core/upload"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

// Outgoing is one captured user turn
type Outgoing struct {
	Text       string
	Attachment *judgewire.Attachment
}

// Prompt is the text sent to the judge. A file sent without text gets a
// generated prompt.
func (o Outgoing) Prompt() string {
	if o.Text == "" && o.Attachment != nil {
		return "Uploaded file: " + o.Attachment.DisplayName
	}
	return o.Text
}

// Composer holds the text being written for the next turn.
type Composer struct {
	mu   sync.Mutex
	text string
}

// Set replaces the composer text
func (c *Composer) Set(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
}

// Text returns the current composer text
func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Take captures the text and the staged file and clears both in one step.
// Nothing is cleared when it returns an error.
func (c *Composer) Take(uploads *upload.Coordinator) (Outgoing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Consume only takes a staged file, so an error below leaves it in place
	att, phase := uploads.Consume()
	if phase == upload.PhaseStaging || phase == upload.PhaseUploading {
		return Outgoing{}, ErrUploadPending
	}
	text := strings.TrimSpace(c.text)
	if text == "" && att == nil {
		return Outgoing{}, ErrEmptyMessage
	}

	c.text = ""
	return Outgoing{Text: text, Attachment: att}, nil
}
