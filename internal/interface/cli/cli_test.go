package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/neilberkman/proofa/internal/core/models"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2025, 6, 18, 15, 0, 0, 0, time.Local)

	tests := []struct {
		input string
		want  string // 2006-01-02, empty for no match
	}{
		{"2024-03-05", "2024-03-05"},
		{"2024/03/05", "2024-03-05"},
		{"2024-03-05T10:30:00", "2024-03-05"},
		{"yesterday", "2025-06-17"},
		{"gibberish", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseDate(tt.input, now)
			if tt.want == "" {
				if got != nil {
					t.Errorf("parseDate(%q) = %v, want no match", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("parseDate(%q) = nil, want %s", tt.input, tt.want)
			}
			if d := got.Format("2006-01-02"); d != tt.want {
				t.Errorf("parseDate(%q) = %s, want %s", tt.input, d, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short   text\nhere", 50); got != "short text here" {
		t.Errorf("whitespace not collapsed: %q", got)
	}

	long := strings.Repeat("word ", 20)
	got := truncate(long, 30)
	if !strings.HasSuffix(got, "...") || len(got) > 33 {
		t.Errorf("truncate(long, 30) = %q", got)
	}
	if strings.Contains(got, "wor...") {
		t.Errorf("expected a cut at a word boundary, got %q", got)
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("shortHash(abc) = %q", got)
	}
	if got := shortHash("0123456789abcdef0123"); got != "0123456789abcdef..." {
		t.Errorf("shortHash = %q", got)
	}
}

func TestBuildCreateRequest(t *testing.T) {
	reset := func() {
		newName, newSeed, newSeedFile, newOath = "", "", "", false
	}
	t.Cleanup(reset)

	reset()
	newName = "Poster"
	if _, err := buildCreateRequest(); err == nil || !strings.Contains(err.Error(), "oath") {
		t.Errorf("expected oath error, got %v", err)
	}

	reset()
	newOath = true
	if _, err := buildCreateRequest(); err == nil || !strings.Contains(err.Error(), "--name") {
		t.Errorf("expected name error, got %v", err)
	}

	reset()
	seedFile := filepath.Join(t.TempDir(), "seed.md")
	if err := os.WriteFile(seedFile, []byte("  a lighthouse made of sound\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	newName, newSeedFile, newOath = " Poster ", seedFile, true
	req, err := buildCreateRequest()
	if err != nil {
		t.Fatalf("buildCreateRequest: %v", err)
	}
	if req.Name != "Poster" || req.SeedContent != "a lighthouse made of sound" || !req.OathSigned {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel(models.StatusCertified); got != "certified" {
		t.Errorf("statusLabel(certified) = %q", got)
	}
	if got := statusLabel(models.Status("ARCHIVED")); got != "unknown" {
		t.Errorf("statusLabel(archived) = %q", got)
	}
}
