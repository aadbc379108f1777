package push

import (
	"testing"
	"time"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

func mustParse(t *testing.T, frame string) judgewire.Event {
	t.Helper()
	ev, err := judgewire.ParseEvent([]byte(frame))
	if err != nil {
		t.Fatalf("ParseEvent(%s) error = %v", frame, err)
	}
	return ev
}

func TestInterpret_ScoreOnly(t *testing.T) {
	u, ok := Interpret(mustParse(t, `{"type":"analysis_update","score":95}`), time.Now())
	if !ok {
		t.Fatal("analysis update should be interpreted")
	}
	if u.Message != nil {
		t.Error("score-only update must not add a transcript entry")
	}
	if u.Analysis.Score != 95 || !u.Analysis.HasScore {
		t.Errorf("Analysis = %+v", u.Analysis)
	}
}

func TestInterpret_MessageBecomesAssistantEntry(t *testing.T) {
	u, ok := Interpret(mustParse(t, `{"type":"analysis_update","message":"Lovely","score":0.5,"verdict":"Mixed"}`), time.Now())
	if !ok || u.Message == nil {
		t.Fatalf("Interpret() = %+v, %v", u, ok)
	}
	m := u.Message
	if m.Role != models.RoleAssistant || m.Origin != models.OriginPush || m.Content != "Lovely" {
		t.Errorf("message = %+v", m)
	}
	if m.Analysis == nil || m.Analysis.Score != 50 {
		t.Errorf("message analysis = %+v", m.Analysis)
	}
	if m.ID == "" {
		t.Error("synthetic message needs an id")
	}
}

func TestInterpret_StableIDs(t *testing.T) {
	frame := `{"type":"analysis_update","message":"Lovely","score":70}`
	a, _ := Interpret(mustParse(t, frame), time.Now())
	b, _ := Interpret(mustParse(t, frame), time.Now().Add(time.Minute))
	if a.Message.ID != b.Message.ID {
		t.Errorf("redelivered event got a new id: %s vs %s", a.Message.ID, b.Message.ID)
	}

	c, _ := Interpret(mustParse(t, `{"type":"analysis_update","message":"Lovely","score":71}`), time.Now())
	if c.Message.ID == a.Message.ID {
		t.Error("different payloads should get different ids")
	}

	d, _ := Interpret(mustParse(t, `{"type":"analysis_update","id":"evt-7","message":"Lovely"}`), time.Now())
	if d.Message.ID != "evt-7" {
		t.Errorf("event id should be used, got %s", d.Message.ID)
	}
}

func TestInterpret_Skips(t *testing.T) {
	for _, frame := range []string{
		`{"type":"typing"}`,
		`{"type":"analysis_update"}`,
	} {
		if _, ok := Interpret(mustParse(t, frame), time.Now()); ok {
			t.Errorf("Interpret(%s) should be skipped", frame)
		}
	}
}
