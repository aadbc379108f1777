package models

import (
	"testing"
	"time"

	"github.com/neilberkman/proofa/pkg/judgewire"
)

func TestSessionValidation(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{
			name: "valid session",
			session: Session{
				ID:           "ws-123",
				Name:         "Poster series",
				Status:       StatusCollaborating,
				CurrentScore: 42,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			},
			wantErr: false,
		},
		{
			name: "missing ID",
			session: Session{
				Name: "Poster series",
			},
			wantErr: true,
		},
		{
			name: "score out of range",
			session: Session{
				ID:           "ws-123",
				CurrentScore: 140,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"LICENSING":     StatusLicensing,
		"certified":     StatusCertified,
		"COLLABORATING": StatusCollaborating,
		"":              StatusCollaborating,
		"something":     StatusCollaborating,
	}
	for in, want := range tests {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSessionAdvance_ForwardOnly(t *testing.T) {
	s := Session{ID: "ws", Status: StatusCollaborating}

	if !s.Advance(StatusCertified) {
		t.Fatal("Collaborating -> Certified should be allowed")
	}
	if s.Advance(StatusCollaborating) {
		t.Error("Certified -> Collaborating should be refused")
	}
	if s.Status != StatusCertified {
		t.Errorf("status = %s, want CERTIFIED", s.Status)
	}
	if !s.Advance(StatusLicensing) {
		t.Error("Certified -> Licensing should be allowed")
	}
	if s.Advance(StatusLicensing) {
		t.Error("Licensing -> Licensing is not a forward step")
	}
}

func TestMessageResolvedAnalysis(t *testing.T) {
	m := Message{
		ID:      "a1",
		Role:    RoleAssistant,
		Content: `{"score":0.92,"verdict":"Approved","reason":"Strong originality"}`,
	}

	a, ok := m.ResolvedAnalysis()
	if !ok {
		t.Fatal("expected analysis")
	}
	if a.Score != 92 {
		t.Errorf("Score = %d, want 92", a.Score)
	}
	if m.Analysis == nil {
		t.Error("analysis should be backfilled onto the message")
	}
	if m.Content == "" {
		t.Error("content must not change")
	}

	user := Message{ID: "u1", Role: RoleUser, Content: `{"score":1}`}
	if _, ok := user.ResolvedAnalysis(); ok {
		t.Error("user messages never resolve an analysis")
	}
}

func TestFromRecord(t *testing.T) {
	rec := judgewire.Record{ID: "r1", Role: judgewire.RoleAssistant, Content: "hi"}
	m := FromRecord(rec)
	if m.Origin != OriginHistory || m.Role != RoleAssistant || m.ID != "r1" {
		t.Errorf("FromRecord() = %+v", m)
	}
}
