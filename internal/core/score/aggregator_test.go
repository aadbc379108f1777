package score

import (
	"testing"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

func user(id, content string) models.Message {
	return models.Message{ID: id, Role: models.RoleUser, Content: content}
}

func assistant(id, content string) models.Message {
	return models.Message{ID: id, Role: models.RoleAssistant, Content: content}
}

func TestRecompute_EmbeddedAnalysis(t *testing.T) {
	msgs := []models.Message{
		user("u1", "hi"),
		assistant("a1", `{"score":0.92,"verdict":"Approved","reason":"Strong originality"}`),
	}

	agg := NewAggregator(0)
	snap, _ := agg.Recompute(msgs)

	if snap.Score != 92 || snap.Verdict != "Approved" || snap.Reason != "Strong originality" {
		t.Errorf("Recompute() = %+v", snap)
	}
	if !snap.Eligible {
		t.Error("92 should be eligible")
	}
	if snap.Source != SourceTimeline {
		t.Errorf("Source = %s, want timeline", snap.Source)
	}
}

func TestRecompute_NewestAnalysisWins(t *testing.T) {
	older := judgewire.Analysis{Score: 30, Verdict: "Weak", HasScore: true}
	msgs := []models.Message{
		{ID: "a1", Role: models.RoleAssistant, Content: "first", Analysis: &older},
		assistant("a2", `{"score":64,"verdict":"Growing"}`),
		assistant("a3", "plain reply, no analysis"),
		user("u1", `{"score":99}`),
	}

	snap, _ := NewAggregator(0).Recompute(msgs)
	if snap.Score != 64 || snap.Verdict != "Growing" {
		t.Errorf("Recompute() = %+v, want score 64 / Growing", snap)
	}
}

func TestRecompute_FallsBackToSessionScore(t *testing.T) {
	agg := NewAggregator(55)
	snap, _ := agg.Recompute([]models.Message{user("u1", "hello")})
	if snap.Score != 55 || snap.Source != SourceSession {
		t.Errorf("Recompute() = %+v, want session score 55", snap)
	}
}

func TestRecompute_PartialAnalysisUsesSessionScoreWhenAlone(t *testing.T) {
	agg := NewAggregator(47)
	snap, _ := agg.Recompute([]models.Message{assistant("a1", `{"verdict":"Pending"}`)})
	if snap.Score != 47 || snap.Verdict != "Pending" {
		t.Errorf("Recompute() = %+v", snap)
	}
}

// A verdict-only reply keeps the score the judge gave last, not the score the
// session had when it was opened.
func TestRecompute_PartialAnalysisKeepsLatestScore(t *testing.T) {
	agg := NewAggregator(50)
	msgs := []models.Message{
		user("u1", "a poster"),
		assistant("a1", `{"score":92}`),
	}
	snap, fired := agg.Recompute(msgs)
	if snap.Score != 92 {
		t.Fatalf("Recompute() = %+v, want 92", snap)
	}
	if fired {
		t.Fatal("the first observation only primes the gate")
	}

	revised := judgewire.Analysis{Verdict: "Revised"}
	msgs = append(msgs, user("u2", "warmer colors"),
		models.Message{ID: "a2", Role: models.RoleAssistant, Content: "Noted.", Analysis: &revised})
	snap, _ = agg.Recompute(msgs)
	if snap.Score != 92 || snap.Verdict != "Revised" || !snap.Eligible {
		t.Errorf("Recompute() = %+v, want 92 / Revised / eligible", snap)
	}

	msgs = append(msgs, assistant("a3", `{"score":95}`))
	if _, fired = agg.Recompute(msgs); fired {
		t.Error("the score never dipped below 80, so the signal must not fire again")
	}
}

func TestRecompute_PartialAnalysisAfterScorePush(t *testing.T) {
	msgs := []models.Message{assistant("a1", `{"score":40}`)}

	agg := NewAggregator(10)
	agg.Recompute(msgs)
	agg.ApplyPush(judgewire.Analysis{Score: 85, HasScore: true}, len(msgs))
	agg.Recompute(msgs)

	msgs = append(msgs, assistant("a2", `{"reason":"Clear direction"}`))
	snap, _ := agg.Recompute(msgs)
	if snap.Score != 85 || snap.Reason != "Clear direction" || snap.Source != SourceTimeline {
		t.Errorf("Recompute() = %+v, want the pushed 85 with the new reason", snap)
	}
}

// A push event carrying only a score while the displayed score is 70.
func TestApplyPush_ScoreOnlyUpdate(t *testing.T) {
	base := judgewire.Analysis{Score: 70, Verdict: "Promising", Reason: "Some direction", HasScore: true}
	msgs := []models.Message{{ID: "a1", Role: models.RoleAssistant, Content: "ok", Analysis: &base}}

	agg := NewAggregator(0)
	snap, fired := agg.Recompute(msgs)
	if snap.Score != 70 || fired {
		t.Fatalf("initial snapshot = %+v fired=%v", snap, fired)
	}

	push := judgewire.Analysis{Score: 95, HasScore: true}
	agg.ApplyPush(push, len(msgs))
	snap, fired = agg.Recompute(msgs)
	if snap.Score != 95 {
		t.Errorf("Score = %d, want 95", snap.Score)
	}
	if snap.Verdict != "Promising" {
		t.Errorf("partial push should keep the verdict, got %q", snap.Verdict)
	}
	if !fired {
		t.Error("crossing from 70 to 95 should fire the eligibility signal")
	}

	// Identical duplicate.
	agg.ApplyPush(push, len(msgs))
	if _, fired = agg.Recompute(msgs); fired {
		t.Error("duplicate push must not re-fire")
	}
}

func TestApplyPush_LaterTimelineEntryWins(t *testing.T) {
	msgs := []models.Message{assistant("a1", `{"score":40}`)}

	agg := NewAggregator(0)
	agg.Recompute(msgs)
	agg.ApplyPush(judgewire.Analysis{Score: 60, HasScore: true}, len(msgs))

	if snap, _ := agg.Recompute(msgs); snap.Score != 60 {
		t.Fatalf("push should outrank older entries, got %d", snap.Score)
	}

	msgs = append(msgs, assistant("a2", `{"score":72}`))
	if snap, _ := agg.Recompute(msgs); snap.Score != 72 || snap.Source != SourceTimeline {
		t.Errorf("newer timeline entry should win, got %+v", snap)
	}
}

func TestApplyPush_IgnoresEmptyAnalysis(t *testing.T) {
	agg := NewAggregator(33)
	agg.Recompute(nil)
	agg.ApplyPush(judgewire.Analysis{}, 0)
	if snap, _ := agg.Recompute(nil); snap.Score != 33 {
		t.Errorf("empty push changed the score to %d", snap.Score)
	}
}

func TestNewAggregator_ClampsBase(t *testing.T) {
	if got := NewAggregator(140).Current().Score; got != 100 {
		t.Errorf("Current().Score = %d, want 100", got)
	}
	if got := NewAggregator(-3).Current().Score; got != 0 {
		t.Errorf("Current().Score = %d, want 0", got)
	}
}
