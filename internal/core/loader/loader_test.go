package loader

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

type fakeSource struct {
	session    models.Session
	sessionErr error
	history    string
	historyErr error
}

func (f *fakeSource) GetSession(ctx context.Context, id string) (models.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeSource) GetHistory(ctx context.Context, id string) ([]judgewire.Record, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return judgewire.ParseHistory(json.RawMessage(f.history))
}

func TestLoad_ReversesToOldestFirst(t *testing.T) {
	src := &fakeSource{
		session: models.Session{ID: "ws-1", Name: "Poster", CurrentScore: 10},
		history: `[
			{"id":"m3","role":"assistant","content":"{\"score\":0.92,\"verdict\":\"Approved\",\"reason\":\"Strong originality\"}"},
			{"id":"m2","role":"user","content":"hi"},
			{"id":"m1","role":"assistant","content":"welcome"}
		]`,
	}

	res, err := New(src, nil).Load(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"m1", "m2", "m3"}
	if len(res.History) != len(want) {
		t.Fatalf("got %d messages, want %d", len(res.History), len(want))
	}
	for i, id := range want {
		if res.History[i].ID != id {
			t.Errorf("History[%d].ID = %s, want %s", i, res.History[i].ID, id)
		}
		if res.History[i].Origin != models.OriginHistory {
			t.Errorf("History[%d].Origin = %s", i, res.History[i].Origin)
		}
	}

	last := res.History[2]
	if last.Analysis == nil || last.Analysis.Score != 92 || last.Analysis.Verdict != "Approved" {
		t.Errorf("embedded analysis not enriched: %+v", last.Analysis)
	}
}

func TestLoad_MalformedRecordStillRenders(t *testing.T) {
	src := &fakeSource{
		session: models.Session{ID: "ws-1"},
		history: `[{"id":"m1","role":"assistant","content":"{not json}"}]`,
	}

	res, err := New(src, nil).Load(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(res.History) != 1 || res.History[0].Content != "{not json}" || res.History[0].Analysis != nil {
		t.Errorf("History = %+v", res.History)
	}
}

func TestLoad_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(&fakeSource{sessionErr: boom}, nil).Load(context.Background(), "ws-1")
	if !errors.Is(err, boom) {
		t.Errorf("session error not wrapped: %v", err)
	}

	res, err := New(&fakeSource{session: models.Session{Name: "kept"}, historyErr: boom}, nil).Load(context.Background(), "ws-1")
	if !errors.Is(err, boom) {
		t.Errorf("history error not wrapped: %v", err)
	}
	if res.Session.Name != "kept" || res.Session.ID != "ws-1" {
		t.Errorf("session should survive a history failure: %+v", res.Session)
	}
}
