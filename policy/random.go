package policy

import "github.com/sarchlab/opencache/geom"

// random models the hardware's free-running counter register. The counter is
// shared across all sets and advances once per clock cycle, so its value is
// a deterministic function of elapsed cycles, not of the call sequence. The
// reference simulator replays cycle counts to stay in lockstep with the
// controller.
type random struct {
	numWays int
	counter int
}

func newRandom(g geom.Geometry) *random {
	return &random{numWays: g.NumWays}
}

// SelectVictim prefers an invalid way; otherwise the counter decides.
func (r *random) SelectVictim(_ int, valid []bool) int {
	for way, v := range valid {
		if !v {
			return way
		}
	}

	return r.counter
}

func (r *random) OnAccess(int, int) {}
func (r *random) OnFill(int, int)   {}

func (r *random) Advance(cycles int) {
	r.counter = (r.counter + cycles) % r.numWays
}

func (r *random) Reset() {
	r.counter = 0
}

func (r *random) Kind() string            { return geom.PolicyRandom }
func (r *random) UsesMetadataArray() bool { return false }
func (r *random) MetadataBits() int       { return 0 }
func (r *random) HazardOnReadHit() bool   { return false }

// Counter exposes the current counter value for tests.
func (r *random) Counter() int {
	return r.counter
}
