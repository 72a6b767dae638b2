package verification_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/opencache/controller"
	"github.com/sarchlab/opencache/geom"
	"github.com/sarchlab/opencache/mem"
	"github.com/sarchlab/opencache/verification"
)

type cosimCase struct {
	name    string
	cfg     geom.Config
	latency int
}

func cosimCases() []cosimCase {
	direct := geom.Config{
		TotalSize:    256,
		WordSize:     8,
		WordsPerLine: 4,
		AddressSize:  8,
		NumWays:      1,
		DataHazard:   true,
	}

	directNoBypass := direct
	directNoBypass.DataHazard = false

	fifo := geom.Config{
		TotalSize:         512,
		WordSize:          8,
		WordsPerLine:      4,
		AddressSize:       10,
		NumWays:           2,
		ReplacementPolicy: geom.PolicyFIFO,
		DataHazard:        true,
	}

	lru := fifo
	lru.NumWays = 4
	lru.ReplacementPolicy = geom.PolicyLRU

	lruNoBypass := lru
	lruNoBypass.DataHazard = false

	random := fifo
	random.ReplacementPolicy = geom.PolicyRandom

	wide := geom.Config{
		TotalSize:         16384,
		WordSize:          32,
		WordsPerLine:      4,
		AddressSize:       16,
		NumWays:           2,
		ReplacementPolicy: geom.PolicyLRU,
		DataHazard:        true,
	}

	return []cosimCase{
		{"direct-mapped", direct, 4},
		{"direct-mapped, no bypass", directNoBypass, 4},
		{"direct-mapped, latency 1", direct, 1},
		{"2-way fifo", fifo, 4},
		{"4-way lru", lru, 4},
		{"4-way lru, no bypass", lruNoBypass, 3},
		{"2-way random", random, 4},
		{"2-way lru, 32-bit words", wide, 2},
	}
}

var _ = Describe("Controller against the reference simulator", func() {
	for _, tc := range cosimCases() {
		tc := tc

		It("should match on "+tc.name, func() {
			g, err := tc.cfg.Derive()
			Expect(err).ToNot(HaveOccurred())

			for seed := int64(1); seed <= 3; seed++ {
				main := mem.NewLatencyMemory(
					tc.latency, g.NumLines(), g.WordsPerLine)
				c := controller.MakeBuilder().
					WithGeometry(g).
					WithMainMemory(main).
					Build(fmt.Sprintf("Cache%d", seed))

				gen := verification.NewGenerator(g, tc.latency, seed)
				vectors := gen.Generate(400)

				runner := verification.NewRunner(c)
				Expect(runner.Run(vectors)).To(Succeed())
			}
		})
	}
})

type countingProgress struct {
	finished uint64
}

func (p *countingProgress) Increment(n uint64) {
	p.finished += n
}

var _ = Describe("Runner", func() {
	It("should report progress once per replayed vector", func() {
		g, err := geom.Config{
			TotalSize:    256,
			WordSize:     8,
			WordsPerLine: 4,
			AddressSize:  8,
			NumWays:      1,
			DataHazard:   true,
		}.Derive()
		Expect(err).ToNot(HaveOccurred())

		main := mem.NewLatencyMemory(4, g.NumLines(), g.WordsPerLine)
		c := controller.MakeBuilder().
			WithGeometry(g).
			WithMainMemory(main).
			Build("Cache")

		vectors := verification.NewGenerator(g, 4, 11).Generate(60)

		progress := &countingProgress{}
		runner := verification.NewRunner(c).WithProgress(progress)

		Expect(runner.Run(vectors)).To(Succeed())
		Expect(progress.finished).To(Equal(uint64(60)))
	})
})

var _ = Describe("Generator", func() {
	var g geom.Geometry

	BeforeEach(func() {
		var err error
		g, err = geom.Config{
			TotalSize:    256,
			WordSize:     8,
			WordsPerLine: 4,
			AddressSize:  8,
			NumWays:      1,
			DataHazard:   true,
		}.Derive()
		Expect(err).ToNot(HaveOccurred())
	})

	It("should be deterministic for a seed", func() {
		a := verification.NewGenerator(g, 4, 42).Generate(200)
		b := verification.NewGenerator(g, 4, 42).Generate(200)

		Expect(a).To(Equal(b))
	})

	It("should differ across seeds", func() {
		a := verification.NewGenerator(g, 4, 1).Generate(200)
		b := verification.NewGenerator(g, 4, 2).Generate(200)

		Expect(a).ToNot(Equal(b))
	})

	It("should number vectors sequentially", func() {
		vectors := verification.NewGenerator(g, 4, 7).Generate(50)

		for i, v := range vectors {
			Expect(v.Seq).To(Equal(i))
		}
	})

	It("should keep write data within the word width", func() {
		vectors := verification.NewGenerator(g, 4, 7).Generate(200)

		for _, v := range vectors {
			Expect(v.Data).To(BeNumerically("<=", g.WordMask()))
			Expect(v.DOut).To(BeNumerically("<=", g.WordMask()))
			Expect(v.Addr).To(BeNumerically("<", uint64(1)<<8))
		}
	})
})
