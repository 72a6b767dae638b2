package policy

import "github.com/sarchlab/opencache/geom"

// fifo keeps one pointer per set. The pointer names the next victim and is
// bumped on every fill, so replacement order is insertion order only.
type fifo struct {
	numRows  int
	numWays  int
	waySize  int
	pointers []int
}

func newFIFO(g geom.Geometry) *fifo {
	f := &fifo{
		numRows: g.NumRows,
		numWays: g.NumWays,
		waySize: g.WaySize,
	}
	f.Reset()

	return f
}

func (f *fifo) SelectVictim(set int, _ []bool) int {
	return f.pointers[set]
}

func (f *fifo) OnAccess(int, int) {}

func (f *fifo) OnFill(set, _ int) {
	f.pointers[set] = (f.pointers[set] + 1) % f.numWays
}

func (f *fifo) Advance(int) {}

func (f *fifo) Reset() {
	f.pointers = make([]int, f.numRows)
}

func (f *fifo) Kind() string            { return geom.PolicyFIFO }
func (f *fifo) UsesMetadataArray() bool { return true }
func (f *fifo) MetadataBits() int       { return f.waySize }
func (f *fifo) HazardOnReadHit() bool   { return false }
