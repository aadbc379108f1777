// Package score derives the current authorship score, verdict and reason
// from a reconciled transcript.
package score

import (
	"sync"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

// Source says where the current snapshot came from
type Source string

const (
	SourceSession  Source = "session"
	SourceTimeline Source = "timeline"
	SourcePush     Source = "push"
)

// Snapshot is the current (score, verdict, reason) triple.
type Snapshot struct {
	Score    int
	Verdict  string
	Reason   string
	Eligible bool
	Source   Source
}

// Analysis returns the snapshot as a judge analysis.
func (s Snapshot) Analysis() judgewire.Analysis {
	return judgewire.Analysis{Score: s.Score, Verdict: s.Verdict, Reason: s.Reason, HasScore: true}
}

// Aggregator is a read-side view over the transcript. It is recomputed after
// every transcript mutation.
type Aggregator struct {
	mu      sync.Mutex
	base    judgewire.Analysis
	pushed  *pushedAnalysis
	current Snapshot
	gate    Gate
}

// pushedAnalysis is a score-only push update that has no transcript entry.
// It outranks transcript entries that were already present when it arrived.
type pushedAnalysis struct {
	analysis judgewire.Analysis
	at       int
}

// NewAggregator creates an aggregator that falls back to the session's
// stored score when the transcript carries no analysis.
func NewAggregator(baseScore int) *Aggregator {
	base := judgewire.Analysis{Score: clamp(baseScore), HasScore: true}
	return &Aggregator{
		base: base,
		current: Snapshot{
			Score:    base.Score,
			Eligible: judgewire.Eligible(base.Score),
			Source:   SourceSession,
		},
	}
}

// SetBase replaces the session fallback score (after the session loads).
func (a *Aggregator) SetBase(score int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.base = judgewire.Analysis{Score: clamp(score), HasScore: true}
}

// ApplyPush records a push analysis that did not produce a transcript
// entry. timelineLen is the transcript length at arrival. Fields missing from
// the push keep their current values.
func (a *Aggregator) ApplyPush(update judgewire.Analysis, timelineLen int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !update.Usable() {
		return
	}
	a.pushed = &pushedAnalysis{
		analysis: update.Merge(a.current.Analysis()),
		at:       timelineLen,
	}
}

// Recompute derives the snapshot from msgs and reports whether this
// recomputation crossed the eligibility threshold upward.
func (a *Aggregator) Recompute(msgs []models.Message) (Snapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx, found := latestAnalysis(msgs)

	var chosen judgewire.Analysis
	var source Source
	switch {
	case a.pushed != nil && (idx < 0 || idx < a.pushed.at):
		chosen, source = a.pushed.analysis, SourcePush
	case idx >= 0:
		chosen, source = a.withScore(msgs, idx, found), SourceTimeline
	default:
		chosen, source = a.base, SourceSession
	}

	a.current = Snapshot{
		Score:    chosen.Score,
		Verdict:  chosen.Verdict,
		Reason:   chosen.Reason,
		Eligible: judgewire.Eligible(chosen.Score),
		Source:   source,
	}
	fired := a.gate.Observe(a.current.Score)
	return a.current, fired
}

// withScore fills a missing score in the analysis at idx from the next older
// one: an earlier transcript entry, or a push that arrived after it. The
// session score is the last resort.
func (a *Aggregator) withScore(msgs []models.Message, idx int, found judgewire.Analysis) judgewire.Analysis {
	if found.HasScore {
		return found
	}
	pushUsed := a.pushed == nil
	for i := idx - 1; i >= 0; i-- {
		if !pushUsed && i < a.pushed.at {
			pushUsed = true
			if a.pushed.analysis.HasScore {
				return found.Merge(judgewire.Analysis{Score: a.pushed.analysis.Score, HasScore: true})
			}
		}
		if older, ok := msgs[i].ResolvedAnalysis(); ok && older.HasScore {
			return found.Merge(judgewire.Analysis{Score: older.Score, HasScore: true})
		}
	}
	if !pushUsed && a.pushed.analysis.HasScore {
		return found.Merge(judgewire.Analysis{Score: a.pushed.analysis.Score, HasScore: true})
	}
	return found.Merge(a.base)
}

// Current returns the last computed snapshot.
func (a *Aggregator) Current() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// latestAnalysis scans tail to head for the newest assistant entry with a
// usable analysis, top-level or embedded in its content.
func latestAnalysis(msgs []models.Message) (int, judgewire.Analysis) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if a, ok := msgs[i].ResolvedAnalysis(); ok {
			return i, a
		}
	}
	return -1, judgewire.Analysis{}
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
