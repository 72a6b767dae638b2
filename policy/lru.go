package policy

import (
	"github.com/sarchlab/opencache/geom"
	"github.com/sarchlab/opencache/internal/fault"
)

// lru keeps a dense rank per way in each set. Higher rank means more
// recently used. Promoting a way decrements every rank above its old one,
// so the ranks of a set stay a permutation of 0..numWays-1.
type lru struct {
	numRows int
	numWays int
	waySize int
	ranks   [][]int
}

func newLRU(g geom.Geometry) *lru {
	l := &lru{
		numRows: g.NumRows,
		numWays: g.NumWays,
		waySize: g.WaySize,
	}
	l.Reset()

	return l
}

// SelectVictim returns the way ranked 0. Right after reset several ways
// share rank 0; the hardware's priority chain picks the highest-indexed
// one, so this does too.
func (l *lru) SelectVictim(set int, _ []bool) int {
	victim := -1
	for way, rank := range l.ranks[set] {
		if rank == 0 {
			victim = way
		}
	}

	if victim < 0 {
		fault.Violatef("lru set %d has no way ranked 0", set)
	}

	return victim
}

func (l *lru) OnAccess(set, way int) {
	l.promote(set, way)
}

func (l *lru) OnFill(set, way int) {
	l.promote(set, way)
}

func (l *lru) promote(set, way int) {
	ranks := l.ranks[set]
	old := ranks[way]

	for i := range ranks {
		if ranks[i] > old {
			ranks[i]--
		}
	}
	ranks[way] = l.numWays - 1

	l.checkPermutation(set)
}

// checkPermutation verifies the ranks after every update. Until a set is
// fully warmed up several ways legitimately share rank 0, so the invariant
// is: ranks in range, nonzero ranks distinct. Once every way has been
// filled this is exactly the bijection onto 0..numWays-1.
func (l *lru) checkPermutation(set int) {
	seen := make([]bool, l.numWays)
	for _, rank := range l.ranks[set] {
		if rank < 0 || rank >= l.numWays {
			fault.Violatef("lru set %d rank %d out of range", set, rank)
		}
		if rank != 0 && seen[rank] {
			fault.Violatef("lru set %d ranks %v are not a permutation",
				set, l.ranks[set])
		}
		seen[rank] = true
	}
}

func (l *lru) Advance(int) {}

func (l *lru) Reset() {
	l.ranks = make([][]int, l.numRows)
	for i := range l.ranks {
		l.ranks[i] = make([]int, l.numWays)
	}
}

func (l *lru) Kind() string            { return geom.PolicyLRU }
func (l *lru) UsesMetadataArray() bool { return true }
func (l *lru) MetadataBits() int       { return l.waySize * l.numWays }
func (l *lru) HazardOnReadHit() bool   { return true }

// Ranks exposes the rank array of a set for tests and state inspection.
func (l *lru) Ranks(set int) []int {
	return l.ranks[set]
}
