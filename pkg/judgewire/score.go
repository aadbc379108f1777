package judgewire

import "math"

// EligibilityThreshold is the lowest normalized score that allows certification.
const EligibilityThreshold = 80

// NormalizeScore maps a raw judge score onto 0-100.
// Values at or below 1 are fractions; anything larger is already a percentage.
func NormalizeScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}

	var n float64
	if v <= 1 {
		n = math.Round(v * 100)
	} else {
		n = math.Round(v)
	}

	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return int(n)
}

// Eligible reports whether a normalized score clears the certification gate.
func Eligible(score int) bool {
	return score >= EligibilityThreshold
}
