package mem

import (
	"github.com/sarchlab/opencache/internal/fault"
)

// MainMemory is the request/stall handshake to the backing store. The
// controller issues at most one outstanding request: a Request is only legal
// in a cycle where Stall is low. While a request is in flight Stall stays
// high; on the release cycle Stall is low and, for reads, DOut carries the
// line.
type MainMemory interface {
	Stall() bool
	DOut() []uint64
	Request(write bool, lineAddr uint64, din []uint64)
	Tick()
}

// LatencyMemory is a backing store with a fixed round-trip latency. A
// request accepted in cycle t keeps Stall high for cycles t+1 .. t+latency
// and releases in cycle t+latency+1.
type LatencyMemory struct {
	latency      int
	wordsPerLine int
	lines        [][]uint64

	busy    int
	pending pendingReq
	dout    []uint64
}

type pendingReq struct {
	active bool
	write  bool
	addr   uint64
	din    []uint64
}

// NewLatencyMemory creates a zero-initialized backing store of numLines
// lines with the given latency (at least 1).
func NewLatencyMemory(latency, numLines, wordsPerLine int) *LatencyMemory {
	if latency < 1 {
		panic("main memory latency must be at least 1 cycle")
	}

	m := &LatencyMemory{
		latency:      latency,
		wordsPerLine: wordsPerLine,
		lines:        make([][]uint64, numLines),
		dout:         make([]uint64, wordsPerLine),
	}
	for i := range m.lines {
		m.lines[i] = make([]uint64, wordsPerLine)
	}

	return m
}

// Latency returns the fixed round-trip delay in cycles.
func (m *LatencyMemory) Latency() int {
	return m.latency
}

func (m *LatencyMemory) Stall() bool {
	return m.busy > 0
}

func (m *LatencyMemory) DOut() []uint64 {
	out := make([]uint64, m.wordsPerLine)
	copy(out, m.dout)

	return out
}

func (m *LatencyMemory) Request(write bool, lineAddr uint64, din []uint64) {
	if m.busy > 0 || m.pending.active {
		fault.Violatef("main memory request issued while busy")
	}

	m.pending = pendingReq{
		active: true,
		write:  write,
		addr:   lineAddr,
	}
	if write {
		m.pending.din = make([]uint64, m.wordsPerLine)
		copy(m.pending.din, din)
	}
}

func (m *LatencyMemory) Tick() {
	if m.pending.active {
		m.busy = m.latency
		m.pending.active = false

		if m.pending.write {
			copy(m.lines[m.pending.addr], m.pending.din)
		} else {
			copy(m.dout, m.lines[m.pending.addr])
		}

		return
	}

	if m.busy > 0 {
		m.busy--
	}
}

// Line returns a copy of a backing-store line, for tests.
func (m *LatencyMemory) Line(lineAddr uint64) []uint64 {
	out := make([]uint64, m.wordsPerLine)
	copy(out, m.lines[lineAddr])

	return out
}
