package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"gopkg.in/yaml.v3"

	"github.com/neilberkman/proofa/internal/core/models"
)

// TextExporter writes a plain transcript wrapped at Width columns
type TextExporter struct {
	Width int
}

func (e *TextExporter) Export(t *Transcript, w io.Writer) error {
	name := t.Name
	if name == "" {
		name = t.ID
	}
	_, _ = fmt.Fprintf(w, "%s  [%s]  score %d/100", name, t.Status, t.Score)
	if t.Verdict != "" {
		_, _ = fmt.Fprintf(w, "  %s", t.Verdict)
	}
	_, _ = fmt.Fprintf(w, "\n\n")

	width := e.Width
	if width <= 0 {
		width = 80
	}

	for _, msg := range t.Messages {
		_, _ = fmt.Fprintf(w, "%s\n", Header(msg))
		body := wordwrap.String(Body(msg), width-2)
		if _, err := fmt.Fprintf(w, "%s\n\n", indent.String(body, 2)); err != nil {
			return err
		}
	}
	return nil
}

func (e *TextExporter) Extension() string {
	return "txt"
}

// MarkdownExporter writes a transcript as markdown
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(t *Transcript, w io.Writer) error {
	title := t.Name
	if title == "" {
		title = t.ID
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", title)
	_, _ = fmt.Fprintf(w, "**Status:** %s  \n", t.Status)
	_, _ = fmt.Fprintf(w, "**Score:** %d/100  \n", t.Score)
	if t.Verdict != "" {
		_, _ = fmt.Fprintf(w, "**Verdict:** %s  \n", t.Verdict)
	}
	if t.OriginHash != "" {
		_, _ = fmt.Fprintf(w, "**Origin:** `%s`  \n", t.OriginHash)
	}
	_, _ = fmt.Fprintf(w, "\n---\n\n")

	for i, msg := range t.Messages {
		_, _ = fmt.Fprintf(w, "**%s**\n\n%s\n\n", Header(msg), Body(msg))
		if i < len(t.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}
	return nil
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}

// JSONExporter writes a transcript as indented JSON
type JSONExporter struct{}

func (e *JSONExporter) Export(t *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func (e *JSONExporter) Extension() string {
	return "json"
}

// YAMLExporter writes a transcript as YAML
type YAMLExporter struct{}

func (e *YAMLExporter) Export(t *Transcript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(t)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}

// Header is the one-line label for a message: who, when, and the score it
// carried.
func Header(msg models.Message) string {
	who := "You"
	if msg.Role == models.RoleAssistant {
		who = "Judge"
	}
	var b strings.Builder
	b.WriteString(who)
	if !msg.CreatedAt.IsZero() {
		b.WriteString(" · ")
		b.WriteString(msg.CreatedAt.Local().Format("Jan 2 15:04"))
	}
	if a, ok := msg.ResolvedAnalysis(); ok {
		fmt.Fprintf(&b, " · %d/100", a.Score)
		if a.Verdict != "" {
			b.WriteString(" ")
			b.WriteString(a.Verdict)
		}
	}
	return b.String()
}

// Body is the readable text of a message. Analysis-only replies show their
// reason instead of the raw JSON.
func Body(msg models.Message) string {
	text := msg.Content
	if a, ok := msg.ResolvedAnalysis(); ok && strings.HasPrefix(strings.TrimSpace(text), "{") {
		text = a.Reason
		if text == "" {
			text = a.Verdict
		}
	}
	if msg.Attachment != nil {
		label := msg.Attachment.DisplayName
		if label == "" {
			label = msg.Attachment.URL
		}
		text = strings.TrimSpace(fmt.Sprintf("%s\n[%s: %s]", text, msg.Attachment.Kind, label))
	}
	return text
}
