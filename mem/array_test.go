package mem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Array", func() {
	var a *Array[[]uint64]

	BeforeEach(func() {
		a = NewArray(
			"Cache.TagArray",
			4,
			func() []uint64 { return make([]uint64, 2) },
			func(r []uint64) []uint64 {
				out := make([]uint64, len(r))
				copy(out, r)
				return out
			},
		)
	})

	It("should make a read available one cycle later", func() {
		a.Write(2, []uint64{7, 9})
		a.Tick()

		a.Read(2)
		a.Tick()

		Expect(a.DOut()).To(Equal([]uint64{7, 9}))
	})

	It("should return pre-write contents on a same-row read and write",
		func() {
			a.Write(1, []uint64{1, 1})
			a.Tick()

			// Same cycle: the read must not observe the new value.
			a.Read(1)
			a.Write(1, []uint64{2, 2})
			a.Tick()

			Expect(a.DOut()).To(Equal([]uint64{1, 1}))
			Expect(a.Peek(1)).To(Equal([]uint64{2, 2}))
		})

	It("should hold the output until the next read", func() {
		a.Write(3, []uint64{5, 5})
		a.Tick()
		a.Read(3)
		a.Tick()
		a.Tick()
		a.Tick()

		Expect(a.DOut()).To(Equal([]uint64{5, 5}))
	})

	It("should not alias its storage through the output", func() {
		a.Write(0, []uint64{4, 4})
		a.Tick()
		a.Read(0)
		a.Tick()

		a.DOut()[0] = 99

		Expect(a.Peek(0)).To(Equal([]uint64{4, 4}))
	})

	It("should panic on a second read in one cycle", func() {
		a.Read(0)

		Expect(func() { a.Read(1) }).To(Panic())
	})

	It("should panic on a second write in one cycle", func() {
		a.Write(0, []uint64{0, 0})

		Expect(func() { a.Write(1, []uint64{0, 0}) }).To(Panic())
	})
})
