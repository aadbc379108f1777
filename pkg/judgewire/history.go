package judgewire

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Roles as they appear after normalization.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Record is one parsed history entry.
type Record struct {
	ID         string
	Role       string
	Content    string
	Attachment *Attachment
	Analysis   *Analysis
	CreatedAt  time.Time
}

// ParseHistory decodes a history payload. Records are returned in wire order
// (newest first); callers decide how to order them. Entries that are not
// JSON objects are skipped. Analysis enrichment is best effort per record.
func ParseHistory(data json.RawMessage) ([]Record, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("history payload is not a list: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i, entry := range raw {
		var fields map[string]any
		if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
			continue
		}
		records = append(records, parseRecord(fields, i))
	}
	return records, nil
}

func parseRecord(fields map[string]any, index int) Record {
	rec := Record{
		Role: normalizeRole(fields),
	}
	rec.Content, _ = lookupString(fields, "content", "text")

	if id, ok := lookupString(fields, "id", "message_id", "_id"); ok {
		rec.ID = id
	} else {
		rec.ID = SyntheticID("history", fmt.Sprint(index), rec.Role, rec.Content)
	}

	if ts, ok := lookupString(fields, "created_at", "timestamp"); ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.CreatedAt = t
		}
	}

	rec.Attachment = parseAttachment(fields)

	// Only assistant records carry an analysis. Top-level fields first, then
	// whatever is embedded in the content.
	if rec.Role == RoleAssistant {
		if a, ok := ResolveAnalysis(fields, rec.Content); ok {
			rec.Analysis = &a
		}
	}

	return rec
}

func normalizeRole(fields map[string]any) string {
	role, _ := lookupString(fields, "role", "sender", "type")
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "assistant", "ai", "model", "bot", "judge":
		return RoleAssistant
	default:
		return RoleUser
	}
}

func parseAttachment(fields map[string]any) *Attachment {
	nested, _ := fields["attachment"].(map[string]any)
	source := fields
	if nested != nil {
		source = nested
	}

	url, _ := lookupString(source, "url", "file_url", "attachment_url")
	name, _ := lookupString(source, "name", "file_name", "filename", "original_name")
	id, _ := lookupString(source, "upload_id", "file_id")
	if nested != nil && id == "" {
		id, _ = lookupString(nested, "id")
	}

	if url == "" && id == "" {
		// A bare top-level name is usually the author's, not a file's
		if nested == nil || name == "" {
			return nil
		}
	}

	mime, _ := lookupString(source, "mime_type", "content_type", "mimetype")
	att := &Attachment{
		ID:          id,
		DisplayName: name,
		URL:         url,
		Kind: InferKind(KindHints{
			IsImage:  lookupBool(source, "is_image") || lookupBool(fields, "is_image"),
			IsVideo:  lookupBool(source, "is_video") || lookupBool(fields, "is_video"),
			MIME:     mime,
			URL:      url,
			FileName: name,
		}),
	}
	if att.DisplayName == "" {
		att.DisplayName = displayNameFromURL(url)
	}
	return att
}

func displayNameFromURL(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
