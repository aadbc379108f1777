package score

import "github.com/neilberkman/proofa/pkg/judgewire"

// Gate turns a stream of scores into a one-shot "just became eligible"
// signal. It fires once per upward crossing of the eligibility threshold and
// re-arms only after the score drops below it again.
//
// The first observation primes the gate without firing, so opening a
// workspace that is already eligible does not count as a crossing.
type Gate struct {
	primed bool
	prev   bool
}

// Observe records score and reports whether this observation is an upward
// crossing.
func (g *Gate) Observe(score int) bool {
	eligible := judgewire.Eligible(score)
	if !g.primed {
		g.primed = true
		g.prev = eligible
		return false
	}
	fired := eligible && !g.prev
	g.prev = eligible
	return fired
}

// Eligible returns the eligibility seen on the last observation.
func (g *Gate) Eligible() bool {
	return g.prev
}
