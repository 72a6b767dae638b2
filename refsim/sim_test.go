package refsim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/opencache/geom"
	"github.com/sarchlab/opencache/refsim"
)

func directGeometry(dataHazard bool) geom.Geometry {
	g, err := geom.Config{
		TotalSize:    32,
		WordSize:     8,
		WordsPerLine: 1,
		AddressSize:  8,
		NumWays:      1,
		DataHazard:   dataHazard,
	}.Derive()
	Expect(err).ToNot(HaveOccurred())

	return g
}

func lruGeometry() geom.Geometry {
	g, err := geom.Config{
		TotalSize:         32,
		WordSize:          8,
		WordsPerLine:      1,
		AddressSize:       8,
		NumWays:           2,
		ReplacementPolicy: geom.PolicyLRU,
		DataHazard:        true,
	}.Derive()
	Expect(err).ToNot(HaveOccurred())

	return g
}

var _ = Describe("Simulator, stall model", func() {
	var s *refsim.Simulator

	BeforeEach(func() {
		s = refsim.New(directGeometry(true), 2)
	})

	It("should report the reset walk as one stall per row", func() {
		Expect(s.Reset()).To(Equal(4))
	})

	It("should charge latency+1 stalls for a clean miss", func() {
		stalls, dout := s.Read(0)

		Expect(stalls).To(Equal(3))
		Expect(dout).To(Equal(uint64(0)))
	})

	It("should charge nothing for a hit", func() {
		s.Write(0, 0x1, 5)

		stalls, dout := s.Read(0)

		Expect(stalls).To(Equal(0))
		Expect(dout).To(Equal(uint64(5)))
	})

	It("should double the penalty for a dirty miss", func() {
		s.Write(0, 0x1, 5)

		stalls, _ := s.Write(32, 0x1, 9)

		Expect(stalls).To(Equal(6))
	})

	It("should predict stalls without changing state", func() {
		s.Write(0, 0x1, 5)

		first := s.StallCycles(32)
		second := s.StallCycles(32)

		Expect(first).To(Equal(6))
		Expect(second).To(Equal(first))

		stalls, _ := s.Read(32)
		Expect(stalls).To(Equal(first))
	})

	It("should show the pre-write word on write completions", func() {
		s.Write(0, 0x1, 5)

		_, dout := s.Write(0, 0x1, 9)

		Expect(dout).To(Equal(uint64(5)))
	})

	It("should apply the byte write mask", func() {
		g, err := geom.Config{
			TotalSize:    512,
			WordSize:     16,
			WordsPerLine: 1,
			AddressSize:  8,
			NumWays:      1,
			DataHazard:   true,
		}.Derive()
		Expect(err).ToNot(HaveOccurred())
		s = refsim.New(g, 2)

		s.Write(0, 0x3, 0x1234)
		s.Write(0, 0x2, 0xaa55)

		_, dout := s.Read(0)
		Expect(dout).To(Equal(uint64(0xaa34)))
	})
})

var _ = Describe("Simulator, hazard bubbles", func() {
	It("should add one bubble for same-set back-to-back after a write",
		func() {
			s := refsim.New(directGeometry(false), 2)
			s.Write(0, 0x1, 5)
			s.IdleCycle()

			// Write hit, then a same-set read right behind it.
			stalls, _ := s.Write(0, 0x1, 9)
			Expect(stalls).To(Equal(0))

			stalls, dout := s.Read(0)
			Expect(stalls).To(Equal(1))
			Expect(dout).To(Equal(uint64(9)))
		})

	It("should add one bubble for same-set back-to-back after a fill",
		func() {
			s := refsim.New(directGeometry(false), 2)

			stalls, _ := s.Write(0, 0x1, 5)
			Expect(stalls).To(Equal(3))

			// The fill wrote the arrays, so the hit behind it bubbles.
			stalls, _ = s.Write(0, 0x1, 9)
			Expect(stalls).To(Equal(1))
		})

	It("should not bubble when bypassing is enabled", func() {
		s := refsim.New(directGeometry(true), 2)
		s.Write(0, 0x1, 5)
		s.Write(0, 0x1, 9)

		stalls, dout := s.Read(0)
		Expect(stalls).To(Equal(0))
		Expect(dout).To(Equal(uint64(9)))
	})

	It("should not bubble across an idle cycle", func() {
		s := refsim.New(directGeometry(false), 2)
		s.Write(0, 0x1, 5)
		s.Write(0, 0x1, 9)

		s.IdleCycle()

		stalls, _ := s.Read(0)
		Expect(stalls).To(Equal(0))
	})

	It("should bubble after a read hit under LRU", func() {
		g, err := geom.Config{
			TotalSize:         32,
			WordSize:          8,
			WordsPerLine:      1,
			AddressSize:       8,
			NumWays:           2,
			ReplacementPolicy: geom.PolicyLRU,
			DataHazard:        false,
		}.Derive()
		Expect(err).ToNot(HaveOccurred())
		s := refsim.New(g, 2)

		s.Write(0, 0x1, 5)
		s.Read(0)

		stalls, _ := s.Read(0)
		Expect(stalls).To(Equal(1))
	})
})

var _ = Describe("Simulator, flush", func() {
	var s *refsim.Simulator

	BeforeEach(func() {
		s = refsim.New(directGeometry(true), 2)
	})

	It("should clean every dirty line", func() {
		s.Write(0, 0x1, 5)
		s.Write(1, 0x1, 7)

		s.Flush()

		present, dirty := s.IsDirty(0)
		Expect(present).To(BeTrue())
		Expect(dirty).To(BeFalse())

		present, dirty = s.IsDirty(1)
		Expect(present).To(BeTrue())
		Expect(dirty).To(BeFalse())
	})

	It("should write dirty lines to the backing store", func() {
		s.Write(0, 0x1, 5)

		s.Flush()

		Expect(s.Line(0)).To(Equal([]uint64{5}))
	})

	It("should cost one cycle per clean way", func() {
		Expect(s.Flush()).To(Equal(4))
	})

	It("should leave the last write-back in flight", func() {
		s = refsim.New(directGeometry(true), 6)
		s.Write(0, 0x1, 5)
		s.Write(1, 0x1, 7)

		Expect(s.Flush()).To(Equal(10))

		// The set-1 write-back is still draining; a miss right after
		// the flush waits out the remainder on top of its own fill.
		stalls, _ := s.Read(32)
		Expect(stalls).To(BeNumerically(">", 7))
	})
})

var _ = Describe("Simulator, replacement", func() {
	It("should evict the least recently used way", func() {
		s := refsim.New(lruGeometry(), 2)

		// Addresses 0, 2, 4 all map to set 0 with different tags.
		s.Write(0, 0x1, 5)
		s.Write(2, 0x1, 7)
		s.Read(0)

		// The miss evicts address 2's line, not address 0's.
		s.Write(4, 0x1, 9)

		stalls, dout := s.Read(0)
		Expect(stalls).To(Equal(0))
		Expect(dout).To(Equal(uint64(5)))

		stalls, _ = s.Read(2)
		Expect(stalls).ToNot(Equal(0))
	})

	It("should evict in fill order under FIFO", func() {
		g, err := geom.Config{
			TotalSize:         32,
			WordSize:          8,
			WordsPerLine:      1,
			AddressSize:       8,
			NumWays:           2,
			ReplacementPolicy: geom.PolicyFIFO,
			DataHazard:        true,
		}.Derive()
		Expect(err).ToNot(HaveOccurred())
		s := refsim.New(g, 2)

		s.Write(0, 0x1, 5)
		s.Write(2, 0x1, 7)

		// Repeated hits on the first-filled line do not protect it.
		s.Read(0)
		s.Read(0)
		s.Read(0)

		s.Write(4, 0x1, 9)

		stalls, dout := s.Read(2)
		Expect(stalls).To(Equal(0))
		Expect(dout).To(Equal(uint64(7)))

		stalls, _ = s.Read(0)
		Expect(stalls).ToNot(Equal(0))
	})
})
