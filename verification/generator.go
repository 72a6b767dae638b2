package verification

import (
	"math/rand"

	"github.com/sarchlab/opencache/geom"
	"github.com/sarchlab/opencache/refsim"
)

// A Generator produces golden vectors. It keeps accesses inside a small
// working window of sets and tags so that hits, evictions, and same-set
// back-to-back sequences all occur within a short run.
type Generator struct {
	g   geom.Geometry
	sim *refsim.Simulator
	rng *rand.Rand

	numSets int
	numTags int
	seq     int
}

// NewGenerator creates a generator for the given geometry and main-memory
// latency. The same seed always yields the same vectors.
func NewGenerator(g geom.Geometry, latency int, seed int64) *Generator {
	numSets := 2
	if g.NumRows < numSets {
		numSets = g.NumRows
	}

	return &Generator{
		g:       g,
		sim:     refsim.New(g, latency),
		rng:     rand.New(rand.NewSource(seed)),
		numSets: numSets,
		numTags: 2 * g.NumWays,
	}
}

// ResetStallCycles returns the stall count of the initial reset walk.
func (gen *Generator) ResetStallCycles() int {
	return gen.g.NumRows
}

// Generate produces n vectors: a write-heavy warm-up over the working
// window followed by a mix of reads, writes, and occasional flushes.
func (gen *Generator) Generate(n int) []Vector {
	vectors := make([]Vector, 0, n)

	warmup := n / 4
	for i := 0; i < warmup; i++ {
		vectors = append(vectors, gen.writeVector())
	}

	for len(vectors) < n {
		switch roll := gen.rng.Intn(100); {
		case roll < 2 && len(vectors) > 0:
			vectors = append(vectors, gen.flushVector())
		case roll < 40:
			vectors = append(vectors, gen.writeVector())
		default:
			vectors = append(vectors, gen.readVector())
		}
	}

	return vectors
}

func (gen *Generator) nextAddr() uint64 {
	tag := uint64(gen.rng.Intn(gen.numTags))
	set := uint64(gen.rng.Intn(gen.numSets))
	offset := uint64(gen.rng.Intn(gen.g.WordsPerLine))

	return gen.g.Concat(tag, set, offset)
}

func (gen *Generator) writeVector() Vector {
	addr := gen.nextAddr()
	data := gen.rng.Uint64() & gen.g.WordMask()

	mask := gen.g.FullWriteMask()
	if gen.rng.Intn(4) == 0 {
		mask = uint64(gen.rng.Intn(int(mask))) + 1
	}

	stall, dout := gen.sim.Write(addr, mask, data)
	v := Vector{
		Seq:         gen.seq,
		WriteEnable: true,
		Mask:        mask,
		Addr:        addr,
		Data:        data,
		StallCycles: stall,
		DOut:        dout,
	}
	gen.seq++

	return v
}

func (gen *Generator) readVector() Vector {
	addr := gen.nextAddr()

	stall, dout := gen.sim.Read(addr)
	v := Vector{
		Seq:         gen.seq,
		Addr:        addr,
		StallCycles: stall,
		DOut:        dout,
	}
	gen.seq++

	return v
}

// flushVector models a flush presented one idle cycle after the previous
// completion, which is how the runner replays it.
func (gen *Generator) flushVector() Vector {
	gen.sim.IdleCycle()

	v := Vector{
		Seq:         gen.seq,
		Flush:       true,
		StallCycles: gen.sim.Flush(),
	}
	gen.seq++

	return v
}
