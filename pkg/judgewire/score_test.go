package judgewire

import (
	"math"
	"testing"
)

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int
	}{
		{"zero", 0, 0},
		{"fraction", 0.92, 92},
		{"fraction rounds", 0.916, 92},
		{"one is a fraction", 1, 100},
		{"just above one is a percentage", 1.4, 1},
		{"percentage", 85, 85},
		{"percentage rounds", 79.5, 80},
		{"hundred", 100, 100},
		{"clamps high", 140, 100},
		{"clamps negative", -0.3, 0},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeScore(tt.in); got != tt.want {
				t.Errorf("NormalizeScore(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeScore_Ranges(t *testing.T) {
	// Every fraction in [0,1] maps to round(v*100).
	for i := 0; i <= 1000; i++ {
		v := float64(i) / 1000
		want := int(math.Round(v * 100))
		if got := NormalizeScore(v); got != want {
			t.Fatalf("NormalizeScore(%v) = %d, want %d", v, got, want)
		}
	}

	// Every value in (1,100] maps to round(v).
	for i := 1; i <= 1000; i++ {
		v := 1 + float64(i)*0.099
		want := int(math.Round(v))
		if got := NormalizeScore(v); got != want {
			t.Fatalf("NormalizeScore(%v) = %d, want %d", v, got, want)
		}
	}
}

func TestEligible(t *testing.T) {
	if Eligible(79) {
		t.Error("79 should not be eligible")
	}
	if !Eligible(80) {
		t.Error("80 should be eligible")
	}
}
