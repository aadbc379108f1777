package judgewire

import (
	"encoding/json"
	"strings"
)

// Analysis is the judge's assessment attached to an assistant message.
type Analysis struct {
	Score    int    `json:"score" yaml:"score"`
	Verdict  string `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
	HasScore bool   `json:"-" yaml:"-"`
}

// Usable reports whether the analysis carries at least one field.
func (a Analysis) Usable() bool {
	return a.HasScore || a.Verdict != "" || a.Reason != ""
}

// Merge fills fields missing from a with the ones present in fallback.
func (a Analysis) Merge(fallback Analysis) Analysis {
	if !a.HasScore && fallback.HasScore {
		a.Score = fallback.Score
		a.HasScore = true
	}
	if a.Verdict == "" {
		a.Verdict = fallback.Verdict
	}
	if a.Reason == "" {
		a.Reason = fallback.Reason
	}
	return a
}

// AnalysisFromFields extracts an analysis from a decoded JSON object using
// the fallback key lists.
func AnalysisFromFields(fields map[string]any) Analysis {
	var a Analysis
	if raw, ok := lookupNumber(fields, ScoreKeys...); ok {
		a.Score = NormalizeScore(raw)
		a.HasScore = true
	}
	a.Verdict, _ = lookupString(fields, VerdictKeys...)
	a.Reason, _ = lookupString(fields, ReasonKeys...)
	return a
}

// LooksLikeObject reports whether s, once trimmed, is delimited like a JSON object.
func LooksLikeObject(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// TryParseAnalysis parses content as an embedded analysis blob. It returns
// false when content is not an object, does not decode, or carries no
// analysis fields.
func TryParseAnalysis(content string) (Analysis, bool) {
	if !LooksLikeObject(content) {
		return Analysis{}, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &fields); err != nil {
		return Analysis{}, false
	}

	a := AnalysisFromFields(fields)
	if !a.Usable() {
		return Analysis{}, false
	}
	return a, true
}

// ResolveAnalysis combines top-level fields with an analysis embedded in
// content. Top-level fields win; embedded ones only fill gaps.
func ResolveAnalysis(fields map[string]any, content string) (Analysis, bool) {
	a := AnalysisFromFields(fields)
	if embedded, ok := TryParseAnalysis(content); ok {
		a = a.Merge(embedded)
	}
	return a, a.Usable()
}
