// Package judgewire decodes the authorship judge's wire formats.
//
// The backend has drifted over time and the same value shows up under
// several names. Every fallback list lives here so that contract changes
// touch one package only.
package judgewire

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

// Field fallback lists, in precedence order.
var (
	ScoreKeys   = []string{"score", "overall_authorship_score"}
	VerdictKeys = []string{"verdict", "authorship_verdict"}
	ReasonKeys  = []string{"reason", "summary_judgment"}
	ReplyKeys   = []string{"reply", "response", "message", "answer", "content"}
)

// lookupString returns the first non-empty value found under keys.
// Non-string values are re-encoded as JSON so that nested objects survive
// as text (and can still be sniffed for an embedded analysis).
func lookupString(fields map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// lookupNumber returns the first numeric value found under keys. Numeric
// strings are accepted.
func lookupNumber(fields map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case float64:
			return v, true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func lookupBool(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
	return ""
}

// SyntheticID derives a stable identifier from parts. Used for records the
// backend sent without an id, so that replays of the same record still
// de-duplicate.
func SyntheticID(prefix string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return prefix + "-" + hex.EncodeToString(h.Sum(nil))[:16]
}
