package judgewire

import (
	"encoding/json"
	"fmt"
)

// TypeAnalysisUpdate is the only push event type the client acts on.
const TypeAnalysisUpdate = "analysis_update"

// Event is one decoded push frame.
type Event struct {
	Type       string
	ID         string
	Analysis   Analysis
	Message    string
	HasMessage bool
}

// Known reports whether the client understands this event type. Unknown
// types must be ignored, not rejected.
func (e Event) Known() bool {
	return e.Type == TypeAnalysisUpdate
}

// ParseEvent decodes a push frame. Only frames that are not JSON objects are
// errors; unknown types decode fine and report Known() == false.
func ParseEvent(frame []byte) (Event, error) {
	var fields map[string]any
	if err := json.Unmarshal(frame, &fields); err != nil {
		return Event{}, fmt.Errorf("malformed push frame: %w", err)
	}
	if fields == nil {
		return Event{}, fmt.Errorf("malformed push frame: not an object")
	}

	ev := Event{}
	ev.Type, _ = lookupString(fields, "type")
	if !ev.Known() {
		return ev, nil
	}

	ev.ID, _ = lookupString(fields, "id", "message_id")
	ev.Analysis = AnalysisFromFields(fields)
	ev.Message, ev.HasMessage = lookupString(fields, "message")
	return ev, nil
}
