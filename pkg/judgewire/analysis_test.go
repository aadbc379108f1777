package judgewire

import "testing"

func TestTryParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Analysis
		wantOK  bool
	}{
		{
			name:    "primary keys",
			content: `{"score":0.92,"verdict":"Approved","reason":"Strong originality"}`,
			want:    Analysis{Score: 92, Verdict: "Approved", Reason: "Strong originality", HasScore: true},
			wantOK:  true,
		},
		{
			name:    "fallback keys",
			content: `{"overall_authorship_score":64,"authorship_verdict":"Mixed","summary_judgment":"Heavy AI assist"}`,
			want:    Analysis{Score: 64, Verdict: "Mixed", Reason: "Heavy AI assist", HasScore: true},
			wantOK:  true,
		},
		{
			name:    "primary beats fallback",
			content: `{"score":10,"overall_authorship_score":90}`,
			want:    Analysis{Score: 10, HasScore: true},
			wantOK:  true,
		},
		{
			name:    "surrounding whitespace",
			content: "  \n{\"verdict\":\"Approved\"}\n ",
			want:    Analysis{Verdict: "Approved"},
			wantOK:  true,
		},
		{
			name:    "numeric string score",
			content: `{"score":"0.5"}`,
			want:    Analysis{Score: 50, HasScore: true},
			wantOK:  true,
		},
		{name: "plain text", content: "hello there", wantOK: false},
		{name: "broken json", content: "{not json}", wantOK: false},
		{name: "object without analysis", content: `{"foo":"bar"}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TryParseAnalysis(tt.content)
			if ok != tt.wantOK {
				t.Fatalf("TryParseAnalysis() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("TryParseAnalysis() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveAnalysis_TopLevelWins(t *testing.T) {
	fields := map[string]any{"verdict": "Top"}
	got, ok := ResolveAnalysis(fields, `{"verdict":"Embedded","reason":"filled","score":0.3}`)
	if !ok {
		t.Fatal("expected usable analysis")
	}
	want := Analysis{Score: 30, Verdict: "Top", Reason: "filled", HasScore: true}
	if got != want {
		t.Errorf("ResolveAnalysis() = %+v, want %+v", got, want)
	}
}

func TestAnalysisMerge(t *testing.T) {
	a := Analysis{Score: 70, HasScore: true}
	got := a.Merge(Analysis{Score: 10, HasScore: true, Verdict: "v", Reason: "r"})
	if got.Score != 70 || got.Verdict != "v" || got.Reason != "r" {
		t.Errorf("Merge() = %+v", got)
	}
}
