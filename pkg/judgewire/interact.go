package judgewire

import (
	"encoding/json"
	"fmt"
)

// InteractResult is the decoded payload of an interact call.
type InteractResult struct {
	ID       string
	Reply    string
	Analysis *Analysis
}

// Empty reports whether the response carried nothing worth showing.
func (r InteractResult) Empty() bool {
	return r.Reply == "" && r.Analysis == nil
}

// ParseInteract decodes the data field of an interact response.
//
// The reply text is taken from the first of ReplyKeys that is present.
// Analysis fields are read top-level first, then from a JSON blob embedded in
// the reply. A bare string payload is treated as the reply itself.
func ParseInteract(data json.RawMessage) (InteractResult, error) {
	if len(data) == 0 || string(data) == "null" {
		return InteractResult{}, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		var text string
		if serr := json.Unmarshal(data, &text); serr != nil {
			return InteractResult{}, fmt.Errorf("unrecognized interact payload: %w", err)
		}
		fields = map[string]any{"reply": text}
	}

	var res InteractResult
	res.ID, _ = lookupString(fields, "message_id", "id")
	res.Reply, _ = lookupString(fields, ReplyKeys...)
	if a, ok := ResolveAnalysis(fields, res.Reply); ok {
		res.Analysis = &a
	}
	return res, nil
}
