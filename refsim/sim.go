// Package refsim is the cycle-count oracle for the cache controller. It
// tracks the same line states and replacement decisions as the controller,
// but advances an absolute cycle clock arithmetically instead of ticking an
// FSM, so every access yields its stall-cycle count and data word in O(ways).
package refsim

import (
	"github.com/sarchlab/opencache/geom"
	"github.com/sarchlab/opencache/policy"
)

type line struct {
	valid bool
	dirty bool
	tag   uint64
	data  []uint64
}

// prevReq records the request that completed last, for the back-to-back
// same-set hazard check.
type prevReq struct {
	valid bool
	hit   bool
	write bool
	set   uint64
}

// Simulator predicts, for each access, the number of cycles the controller
// holds Stall high and the word it drives on DOut, assuming the next request
// is always presented in the completion cycle of the previous one.
type Simulator struct {
	g       geom.Geometry
	pol     policy.Policy
	latency int

	sets    [][]line
	backing map[uint64][]uint64

	prev prevReq

	// clock is the absolute cycle in which the previous request completed
	// (Stall low). memFreeAt is the first cycle main memory accepts a new
	// request; it exceeds clock only right after a flush.
	clock      int
	memFreeAt  int
	advancedTo int
}

// New creates a simulator for the given geometry and main-memory latency.
// The simulator starts as if reset just finished.
func New(g geom.Geometry, latency int) *Simulator {
	s := &Simulator{
		g:       g,
		pol:     policy.New(g),
		latency: latency,
	}
	s.Reset()

	return s
}

// Reset models the post-reset walk: every line invalidated, the policy
// cleared, and the clock positioned at the first idle cycle. It returns the
// number of cycles Stall stays high after the reset input, which is one per
// cache row.
func (s *Simulator) Reset() int {
	s.sets = make([][]line, s.g.NumRows)
	for set := range s.sets {
		s.sets[set] = make([]line, s.g.NumWays)
		for way := range s.sets[set] {
			s.sets[set][way].data = make([]uint64, s.g.WordsPerLine)
		}
	}
	s.backing = make(map[uint64][]uint64)

	s.pol.Reset()
	s.prev = prevReq{}
	s.clock = s.g.NumRows
	s.memFreeAt = 0
	s.advancedTo = 0

	return s.g.NumRows
}

// Flush models the flush walk: one cycle to enter the walk, one cycle per
// clean or invalid way, and a write-back with memory-busy waiting per dirty
// way. It returns the number of cycles Stall stays high. The last
// write-back is still in flight when Stall drops, so a miss immediately
// after a flush waits out the remainder.
func (s *Simulator) Flush() int {
	start := s.clock
	cycle := s.clock + 1

	for set := range s.sets {
		for way := range s.sets[set] {
			l := &s.sets[set][way]
			if l.valid && l.dirty {
				if s.memFreeAt > cycle {
					cycle = s.memFreeAt
				}
				s.writeBack(uint64(set), l)
				s.memFreeAt = cycle + s.latency + 1
			}
			cycle++
		}
	}

	s.clock = cycle
	s.prev = prevReq{}

	// The flush input is presented in a stall-low cycle, so the high
	// stretch starts one cycle later.
	return cycle - start - 1
}

// IdleCycle models one cycle with no request presented. The gap also lets
// the arrays settle, so the back-to-back hazard does not carry across it.
func (s *Simulator) IdleCycle() {
	s.clock++
	s.prev = prevReq{}
}

// Read performs a read access and returns its stall-cycle count and the
// word the controller drives on completion.
func (s *Simulator) Read(addr uint64) (int, uint64) {
	return s.access(false, addr, 0, 0)
}

// Write performs a write access. The returned word is the pre-write content
// of the addressed word, which is what the controller's output port shows in
// the completion cycle.
func (s *Simulator) Write(addr, wmask, din uint64) (int, uint64) {
	return s.access(true, addr, wmask, din)
}

// StallCycles predicts the stall count of the next access without
// performing it. Reads and writes cost the same, so the access kind does
// not matter.
func (s *Simulator) StallCycles(addr uint64) int {
	set := s.g.Set(addr)
	tag := s.g.Tag(addr)
	_, hit := s.lookup(set, tag)
	stall, compareCycle, _ := s.cost(set, hit)

	if !hit {
		victim := &s.sets[set][s.predictVictim(set, compareCycle)]
		if victim.valid && victim.dirty {
			stall += s.latency + 1
		}
	}

	return stall
}

// predictVictim resolves the victim way as of a future compare cycle. Only
// the random policy's choice depends on the cycle: its counter advances
// once per cycle, so its value at the compare is the compare cycle minus
// one, modulo the way count.
func (s *Simulator) predictVictim(set uint64, compareCycle int) int {
	valid := make([]bool, s.g.NumWays)
	allValid := true
	for way := range s.sets[set] {
		valid[way] = s.sets[set][way].valid
		allValid = allValid && valid[way]
	}

	if s.g.ReplacementPolicy == geom.PolicyRandom && allValid {
		return (compareCycle - 1) % s.g.NumWays
	}

	return s.pol.SelectVictim(int(set), valid)
}

// IsDirty reports whether the addressed line is present and whether it is
// dirty.
func (s *Simulator) IsDirty(addr uint64) (present, dirty bool) {
	l, hit := s.lookup(s.g.Set(addr), s.g.Tag(addr))
	if !hit {
		return false, false
	}

	return true, l.dirty
}

// Line returns a copy of the backing store's line, for tests.
func (s *Simulator) Line(lineAddr uint64) []uint64 {
	out := make([]uint64, s.g.WordsPerLine)
	copy(out, s.backing[lineAddr])

	return out
}

func (s *Simulator) lookup(set, tag uint64) (*line, bool) {
	for way := range s.sets[set] {
		l := &s.sets[set][way]
		if l.valid && l.tag == tag {
			return l, true
		}
	}

	return nil, false
}

// cost computes the stall count of an access on the given set, split into
// the hazard bubble, the wait for memory, and the miss penalty. It returns
// the stall count, the compare cycle, and the completion cycle.
func (s *Simulator) cost(set uint64, hit bool) (stall, compareCycle, done int) {
	bubble := 0
	if !s.g.DataHazard && s.prev.valid && s.prev.set == set {
		if !s.prev.hit || s.prev.write || s.pol.HazardOnReadHit() {
			bubble = 1
		}
	}

	compareCycle = s.clock + 1 + bubble
	done = compareCycle

	if !hit {
		busyWait := s.memFreeAt - compareCycle
		if busyWait < 0 {
			busyWait = 0
		}
		done = compareCycle + busyWait + s.latency + 1
	}

	return done - s.clock - 1, compareCycle, done
}

func (s *Simulator) access(write bool, addr, wmask, din uint64) (int, uint64) {
	set := s.g.Set(addr)
	tag := s.g.Tag(addr)
	offset := s.g.Offset(addr)

	l, hit := s.lookup(set, tag)
	stall, compareCycle, done := s.cost(set, hit)

	s.pol.Advance(compareCycle - 1 - s.advancedTo)
	s.advancedTo = compareCycle - 1

	var way int
	if hit {
		way = s.wayOf(set, l)
		s.pol.OnAccess(int(set), way)
	} else {
		way = s.evict(set, compareCycle, &done, &stall)
		l = s.fill(set, way, tag)
		s.pol.OnFill(int(set), way)
		s.memFreeAt = done
	}

	dout := l.data[offset] & s.g.WordMask()
	if write {
		l.data[offset] = s.mergeWord(l.data[offset], din, wmask)
		l.dirty = true
	}

	s.clock = done
	s.prev = prevReq{valid: true, hit: hit, write: write, set: set}

	return stall, dout
}

// evict picks the victim way and, when it is dirty, accounts for the
// write-back leg of the miss and streams the line to the backing store.
func (s *Simulator) evict(set uint64, compareCycle int, done, stall *int) int {
	valid := make([]bool, s.g.NumWays)
	for way := range s.sets[set] {
		valid[way] = s.sets[set][way].valid
	}

	way := s.pol.SelectVictim(int(set), valid)
	victim := &s.sets[set][way]

	if victim.valid && victim.dirty {
		*done += s.latency + 1
		*stall += s.latency + 1
		s.writeBack(set, victim)
	}

	return way
}

func (s *Simulator) fill(set uint64, way int, tag uint64) *line {
	l := &s.sets[set][way]
	l.valid = true
	l.dirty = false
	l.tag = tag

	src := s.backing[s.g.LineAddr(tag, set)]
	if src == nil {
		for i := range l.data {
			l.data[i] = 0
		}
	} else {
		copy(l.data, src)
	}

	return l
}

func (s *Simulator) writeBack(set uint64, l *line) {
	addr := s.g.LineAddr(l.tag, set)
	dst := s.backing[addr]
	if dst == nil {
		dst = make([]uint64, s.g.WordsPerLine)
		s.backing[addr] = dst
	}
	copy(dst, l.data)
	l.dirty = false
}

func (s *Simulator) wayOf(set uint64, l *line) int {
	for way := range s.sets[set] {
		if &s.sets[set][way] == l {
			return way
		}
	}

	return -1
}

func (s *Simulator) mergeWord(old, din, wmask uint64) uint64 {
	word := old
	for b := 0; b < s.g.NumBytesPerWord; b++ {
		if wmask&(1<<uint(b)) != 0 {
			byteMask := uint64(0xff) << uint(8*b)
			word = word&^byteMask | din&byteMask
		}
	}

	return word
}
