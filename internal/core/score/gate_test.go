package score

import "testing"

func countFires(scores ...int) int {
	var g Gate
	fires := 0
	for _, s := range scores {
		if g.Observe(s) {
			fires++
		}
	}
	return fires
}

func TestGate_OneShot(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   int
	}{
		{"single crossing", []int{40, 85}, 1},
		{"stays eligible", []int{40, 85, 90, 85, 90}, 1},
		{"dip below re-arms", []int{40, 85, 90, 70, 90}, 2},
		{"never eligible", []int{10, 50, 79}, 0},
		{"threshold is inclusive", []int{79, 80}, 1},
		{"already eligible on first observation", []int{90, 95}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countFires(tt.scores...); got != tt.want {
				t.Errorf("fires = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGate_Eligible(t *testing.T) {
	var g Gate
	g.Observe(81)
	if !g.Eligible() {
		t.Error("Eligible() should report the last observation")
	}
	g.Observe(12)
	if g.Eligible() {
		t.Error("Eligible() should drop with the score")
	}
}
