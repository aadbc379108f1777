// Package export writes workspace transcripts in text, markdown, JSON and
// YAML.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/internal/core/score"
)

// Transcript is a workspace and its messages as exported
type Transcript struct {
	ID         string           `json:"id" yaml:"id"`
	Name       string           `json:"name,omitempty" yaml:"name,omitempty"`
	Status     models.Status    `json:"status" yaml:"status"`
	Score      int              `json:"score" yaml:"score"`
	Verdict    string           `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Reason     string           `json:"reason,omitempty" yaml:"reason,omitempty"`
	Eligible   bool             `json:"eligible" yaml:"eligible"`
	OriginHash string           `json:"origin_hash,omitempty" yaml:"origin_hash,omitempty"`
	Messages   []models.Message `json:"messages" yaml:"messages"`
}

// NewTranscript builds a transcript from a loaded workspace
func NewTranscript(session models.Session, snap score.Snapshot, msgs []models.Message) *Transcript {
	if msgs == nil {
		msgs = []models.Message{}
	}
	return &Transcript{
		ID:         session.ID,
		Name:       session.Name,
		Status:     session.Status,
		Score:      snap.Score,
		Verdict:    snap.Verdict,
		Reason:     snap.Reason,
		Eligible:   snap.Eligible,
		OriginHash: session.OriginHash,
		Messages:   msgs,
	}
}

// Since keeps messages created at or after t. Messages without a timestamp
// are kept.
func Since(msgs []models.Message, t time.Time) []models.Message {
	if t.IsZero() {
		return msgs
	}
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.CreatedAt.IsZero() || !m.CreatedAt.Before(t) {
			out = append(out, m)
		}
	}
	return out
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(t *Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "text", "txt":
		return &TextExporter{Width: 80}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: text, md, json, yaml)", format)
	}
}
