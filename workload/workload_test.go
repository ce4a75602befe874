package workload

import (
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("generators", func() {
	newRand := func() *rand.Rand { return rand.New(rand.NewSource(7)) }

	It("are deterministic for a given seed", func() {
		g1, err := Expo(newRand(), 100, 0)
		Expect(err).To(BeNil())
		g2, err := Expo(newRand(), 100, 0)
		Expect(err).To(BeNil())
		Expect(take(g1, 100)).To(Equal(take(g2, 100)))
	})

	Context("expo", func() {
		It("rejects a non-positive median", func() {
			_, err := Expo(newRand(), 0, 0)
			Expect(err).To(HaveOccurred())
		})

		It("yields non-negative keys with roughly half below the median", func() {
			g, err := Expo(newRand(), 100, 0)
			Expect(err).To(BeNil())
			below := 0
			for _, k := range take(g, 10000) {
				Expect(k).To(BeNumerically(">=", 0))
				if k < 100 {
					below++
				}
			}
			Expect(below).To(BeNumerically("~", 5000, 300))
		})

		It("applies the offset", func() {
			g, err := Expo(newRand(), 10, 1000)
			Expect(err).To(BeNil())
			for _, k := range take(g, 100) {
				Expect(k).To(BeNumerically(">=", 1000))
			}
		})
	})

	Context("scan", func() {
		It("rejects a zero step", func() {
			_, err := Scan(0, 0, 0, 10)
			Expect(err).To(HaveOccurred())
		})

		It("steps linearly and wraps", func() {
			g, err := Scan(0, 1, 0, 4)
			Expect(err).To(BeNil())
			Expect(take(g, 6)).To(Equal([]int64{0, 1, 2, 3, 0, 1}))
		})

		It("keeps fractional steps exact", func() {
			g, err := Scan(0, 0.5, 0, 4)
			Expect(err).To(BeNil())
			Expect(take(g, 5)).To(Equal([]int64{0, 0, 1, 1, 2}))
		})
	})

	Context("walk", func() {
		It("rejects a non-positive variance", func() {
			_, err := Walk(newRand(), 0, 0, 0, 10)
			Expect(err).To(HaveOccurred())
		})

		It("stays within the wrapped key space", func() {
			g, err := Walk(newRand(), 100, 500, 0, 1000)
			Expect(err).To(BeNil())
			for _, k := range take(g, 10000) {
				Expect(k).To(BeNumerically(">=", 0))
				Expect(k).To(BeNumerically("<", 1000))
			}
		})
	})

	Context("jump", func() {
		It("shifts the offset after wait*median accesses", func() {
			g, err := Jump(newRand(), 4, 0, 4, 2)
			Expect(err).To(BeNil())
			first := take(g, 8) // one full block at offset 0
			next := take(g, 8)  // next block at offset dist*median = 16
			for _, k := range first {
				Expect(k).To(BeNumerically(">=", 0))
			}
			for _, k := range next {
				Expect(k).To(BeNumerically(">=", 16))
			}
		})
	})

	Context("wave", func() {
		It("yields keys within the wrapped key space", func() {
			g, err := Wave(newRand(), 25, 0, 0.25, 0, 1000)
			Expect(err).To(BeNil())
			for _, k := range take(g, 10000) {
				Expect(k).To(BeNumerically(">=", 0))
				Expect(k).To(BeNumerically("<", 1000))
			}
		})
	})

	Context("cycle", func() {
		It("interleaves its generators round-robin", func() {
			ones := func() int64 { return 1 }
			twos := func() int64 { return 2 }
			g := Cycle(ones, twos)
			Expect(take(g, 5)).To(Equal([]int64{1, 2, 1, 2, 1}))
		})
	})

	Context("mixed", func() {
		It("composes and yields non-negative keys", func() {
			g, err := Mixed(newRand(), 64)
			Expect(err).To(BeNil())
			for _, k := range take(g, 4000) {
				Expect(k).To(BeNumerically(">=", 0))
			}
		})
	})
})
