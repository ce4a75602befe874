package dlfucache

import (
	"fmt"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/dbaarda/DLFUCache/testutil"
	"github.com/dbaarda/DLFUCache/workload"
)

var _ = Describe("Cache", func() {
	Context("construction", func() {
		It("rejects a non-positive size", func() {
			_, err := New[string, int](nopLog(), Config{Size: 0, T: 4})
			Expect(err).To(HaveOccurred())
			_, err = New[string, int](nopLog(), Config{Size: -3, T: 4})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a negative or NaN time constant", func() {
			_, err := New[string, int](nopLog(), Config{Size: 1, T: -1})
			Expect(err).To(HaveOccurred())
			_, err = New[string, int](nopLog(), Config{Size: 1, T: math.NaN()})
			Expect(err).To(HaveOccurred())
		})

		It("defaults the metadata capacity to the cache capacity", func() {
			c := newTestCache(NewConfig(8))
			Expect(c.Size()).To(Equal(8))
			Expect(c.MetaSize()).To(Equal(8))
			Expect(c.T()).To(Equal(DefaultT))
			Expect(c.C()).To(Equal(1.0))
		})

		It("accepts a zero metadata capacity", func() {
			c := newTestCache(Config{Size: 2, MSize: 0, T: 4})
			Expect(c.MetaSize()).To(Equal(0))
		})
	})

	Context("basic operation", func() {
		var c *Cache[string, int]
		BeforeEach(func() { c = newTestCache(Config{Size: 2, MSize: 2, T: 4}) })
		AfterEach(func() { c.ExpectInvariantsOk() })

		It("misses on an empty cache", func() {
			_, ok := c.Get("a")
			Expect(ok).To(BeFalse())
			Expect(c.Stats().MissCount).To(BeEquivalentTo(1))
			Expect(c.Len()).To(BeZero())
			Expect(c.MetaLen()).To(BeZero())
		})

		It("caches and returns values", func() {
			c.Set("a", 1)
			v, ok := c.Get("a")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1))
			Expect(c.Stats().HitCount).To(BeEquivalentTo(1))
		})

		It("overwrite replaces the value without counting a reference", func() {
			c.Set("a", 1)
			before := c.Count("a")
			c.Set("a", 2)
			Expect(c.Count("a")).To(Equal(before))
			v, _ := c.Get("a")
			Expect(v).To(Equal(2))
		})

		It("contains is read-only and three-valued", func() {
			c.Set("a", 1)
			c.Set("b", 2)
			c.Set("x", 3) // evicts the weakest into metadata
			stats := c.Stats()
			inc := c.C()
			Expect(c.Contains("a")).To(Equal(InMeta))
			Expect(c.Contains("b")).To(Equal(InCache))
			Expect(c.Contains("z")).To(Equal(Absent))
			Expect(c.Stats()).To(Equal(stats))
			Expect(c.C()).To(Equal(inc))
		})

		It("clear drops both tiers and resets the increment", func() {
			c.Set("a", 1)
			c.Set("b", 2)
			c.Set("x", 3)
			c.Get("a")
			c.Clear()
			Expect(c.Len()).To(BeZero())
			Expect(c.MetaLen()).To(BeZero())
			Expect(c.C()).To(Equal(1.0))
			Expect(c.Stats()).To(Equal(Stats{}))
		})
	})

	Context("LFU limit: T=Inf, msize=0", func() {
		var c *Cache[string, int]
		BeforeEach(func() { c = newTestCache(Config{Size: 2, MSize: 0, T: Inf}) })
		AfterEach(func() { c.ExpectInvariantsOk() })

		It("displaces the least frequently used", func() {
			c.Set("A", 1)
			c.Set("B", 2)
			for i := 0; i < 3; i++ {
				c.Get("A")
			}
			c.Get("B")
			c.Set("C", 3)

			v, ok := c.Get("A")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1))
			v, ok = c.Get("C")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(3))
			_, ok = c.Get("B")
			Expect(ok).To(BeFalse())
			Expect(c.MetaLen()).To(BeZero())
		})

		It("never advances the increment", func() {
			c.Set("A", 1)
			for i := 0; i < 100; i++ {
				c.Get("A")
			}
			Expect(c.C()).To(Equal(1.0))
			Expect(c.Count("A")).To(Equal(101.0))
		})

		It("breaks count ties in insertion order", func() {
			c.Set("A", 1)
			c.Set("B", 2)
			c.Set("C", 3) // A and B tie at one count; A is older.
			Expect(c.Contains("A")).To(Equal(Absent))
			Expect(c.Contains("B")).To(Equal(InCache))
			Expect(c.Contains("C")).To(Equal(InCache))
		})
	})

	Context("LRU limit: T=0", func() {
		var c *Cache[string, int]
		BeforeEach(func() { c = newTestCache(Config{Size: 2, MSize: 0, T: 0}) })
		AfterEach(func() { c.ExpectInvariantsOk() })

		It("displaces the least recently used", func() {
			c.Set("A", 1)
			c.Set("B", 2)
			c.Get("A")
			c.Set("C", 3)

			v, ok := c.Get("A")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1))
			v, ok = c.Get("C")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(3))
			_, ok = c.Get("B")
			Expect(ok).To(BeFalse())
		})

		It("evicts in exact recency order", func() {
			c = newTestCache(Config{Size: 4, MSize: 0, T: 0})
			for _, k := range []string{"a", "b", "c", "d"} {
				c.Set(k, 0)
			}
			// Touch order makes "b" the most and "a" the least recent.
			c.Get("d")
			c.Get("c")
			c.Get("b")
			evictions := []string{}
			c.OnEvict = func(k string, v int) { evictions = append(evictions, k) }
			for i := 0; i < 4; i++ {
				c.Set(fmt.Sprintf("new%d", i), 0)
			}
			Expect(evictions).To(Equal([]string{"a", "d", "c", "b"}))
		})

		It("the most recently touched key has the highest priority", func() {
			c.Set("A", 1)
			c.Set("B", 2)
			c.Get("A")
			pa, _ := c.cq.Priority("A")
			pb, _ := c.cq.Priority("B")
			Expect(pa).To(BeNumerically(">", pb))
		})
	})

	Context("metadata retention", func() {
		It("promotes a metahit key back with its history", func() {
			c := newTestCache(Config{Size: 2, MSize: 2, T: 4})
			c.Set("A", 1)
			c.Set("B", 2)
			for i := 0; i < 5; i++ {
				c.Get("A")
			}
			c.Set("C", 3) // evicts B, the only unreferenced key
			Expect(c.Contains("B")).To(Equal(InMeta))
			c.Set("D", 4) // evicts C: A's count is far higher
			Expect(c.Contains("C")).To(Equal(InMeta))
			Expect(c.Contains("A")).To(Equal(InCache))

			_, ok := c.Get("B") // metahit: key-missing, but the count moves
			Expect(ok).To(BeFalse())
			c.Set("B", 2) // promotion displaces D, the weakest resident
			Expect(c.Contains("B")).To(Equal(InCache))
			Expect(c.Contains("A")).To(Equal(InCache))
			Expect(c.Contains("D")).To(Equal(InMeta))

			s := c.Stats()
			Expect(s.HitCount).To(BeEquivalentTo(5))
			Expect(s.MHitCount).To(BeEquivalentTo(1))
			Expect(s.MissCount).To(BeEquivalentTo(0))
			c.ExpectInvariantsOk()
		})

		It("a promoted key outranks a fresh one", func() {
			c := newTestCache(Config{Size: 1, MSize: 1, T: 4})
			c.Set("A", 1)
			c.Get("A")
			c.Set("B", 2) // A evicted with count > 1
			c.Get("A")    // metahit
			c.Set("A", 1) // promoted: count resumes above a fresh insert
			Expect(c.Count("A")).To(BeNumerically(">", 2))
		})
	})

	Context("deletion", func() {
		var c *Cache[string, int]
		BeforeEach(func() { c = newTestCache(Config{Size: 2, MSize: 2, T: 4}) })
		AfterEach(func() { c.ExpectInvariantsOk() })

		It("frees the slot without backfill", func() {
			c.Set("A", 1)
			c.Set("B", 2)
			Expect(c.Delete("A")).To(BeTrue())
			Expect(c.Len()).To(Equal(1))
			Expect(c.MetaLen()).To(BeZero(), "remove must not demote to metadata")
			c.Set("C", 3)
			Expect(c.Len()).To(Equal(2))
			Expect(c.Contains("B")).To(Equal(InCache))
			Expect(c.Contains("C")).To(Equal(InCache))
		})

		It("removes retained metadata", func() {
			c.Set("A", 1)
			c.Set("B", 2)
			c.Set("C", 3) // evicts one of A,B into metadata
			Expect(c.MetaLen()).To(Equal(1))
			evicted := "A"
			if c.Contains("B") == InMeta {
				evicted = "B"
			}
			Expect(c.Delete(evicted)).To(BeTrue())
			Expect(c.MetaLen()).To(BeZero())
		})

		It("reports a missing key", func() {
			Expect(c.Delete("ghost")).To(BeFalse())
			Expect(c.Stats().DelCount).To(BeEquivalentTo(1))
		})
	})

	Context("tier transitions", func() {
		It("walks a never-referenced key out through the metadata tier", func() {
			c := newTestCache(Config{Size: 1, MSize: 1, T: 4})
			c.Set("k", 0)
			Expect(c.Contains("k")).To(Equal(InCache))
			c.Set("other0", 0)
			Expect(c.Contains("k")).To(Equal(InMeta))
			c.Set("other1", 0)
			Expect(c.Contains("k")).To(Equal(Absent))
			c.ExpectInvariantsOk()
		})
	})

	Context("scan resistance", func() {
		It("keeps warmed entries resident through an endless scan", func() {
			c := newQuietCache(Config{Size: 4, MSize: 4, T: 16})
			warm := []string{"A", "B", "C", "D"}
			for _, k := range warm {
				c.Set(k, 0)
			}
			for i := 0; i < 3; i++ {
				for _, k := range warm {
					c.Get(k)
				}
			}
			// The first scan key displaces the weakest incumbent into
			// metadata; every later one displaces only its predecessor.
			for i := 0; i < 1000; i++ {
				k := fmt.Sprintf("scan%d", i)
				_, ok := c.Get(k)
				Expect(ok).To(BeFalse())
				c.Set(k, 0)

				resident := 0
				for _, w := range warm {
					if c.Contains(w) == InCache {
						resident++
					}
				}
				Expect(resident).To(Equal(3))
				Expect(c.Contains("A")).To(Equal(InMeta), "displaced incumbent stays tracked")
			}
			c.ExpectInvariantsOk()
		})
	})

	Context("decay accounting", func() {
		It("matches the closed-form decayed count through hundreds of rescales", func() {
			const size = 64
			c := newQuietCache(Config{Size: size, MSize: size, T: 1})
			alpha := math.Exp(1.0 / size)
			c.Set("k0", 0)
			c.Set("k1", 0)
			expected := 1.0
			for i := 0; i < 10000; i++ {
				if i%10 == 9 {
					c.Get("k1") // decays k0 without referencing it
					expected /= alpha
				} else {
					c.Get("k0")
					expected = (expected + 1) / alpha
				}
				Expect(c.C()).To(BeNumerically(">=", 1.0))
				Expect(c.C()).To(BeNumerically("<", 2.0))
				Expect(c.Count("k0")).To(BeNumerically("~", expected, 1e-9))
				Expect(c.Count("k0")).To(BeNumerically(">=", 0.0))
			}
			c.ExpectInvariantsOk()
		})

		It("an extra rescale leaves observable behaviour identical", func() {
			ops := func(c *Cache[string, int]) {
				for i := 0; i < 40; i++ {
					k := fmt.Sprintf("k%d", i%6)
					if _, ok := c.Get(k); !ok {
						c.Set(k, i)
					}
				}
			}
			a := newQuietCache(Config{Size: 4, MSize: 4, T: 2})
			b := newQuietCache(Config{Size: 4, MSize: 4, T: 2})
			ops(a)
			ops(b)
			b.halveCounts()
			for i := 0; i < 6; i++ {
				k := fmt.Sprintf("k%d", i)
				Expect(b.Count(k)).To(BeNumerically("~", a.Count(k), 1e-12))
				Expect(b.Contains(k)).To(Equal(a.Contains(k)))
			}
			// Behaviour stays in lockstep afterwards too.
			ops(a)
			ops(b)
			for i := 0; i < 6; i++ {
				k := fmt.Sprintf("k%d", i)
				Expect(b.Contains(k)).To(Equal(a.Contains(k)))
			}
			Expect(b.Stats()).To(Equal(a.Stats()))
		})
	})

	Context("randomized operations", func() {
		It("holds invariants under a fuzzed op mix", func() {
			c := newQuietCache(Config{Size: 8, MSize: 4, T: 2})
			const keySpace = 64
			for i := 0; i < 5000; i++ {
				k := fmt.Sprintf("k%d", testutil.Rand.Intn(keySpace))
				switch op := testutil.Rand.Intn(10); {
				case op < 6:
					if _, ok := c.Get(k); !ok {
						c.Set(k, i)
					}
				case op < 9:
					c.Set(k, i)
				default:
					c.Delete(k)
				}
				if i%97 == 0 {
					c.ExpectInvariantsOk()
				}
			}
			c.ExpectInvariantsOk()
			s := c.Stats()
			testutil.Byf("stats after fuzz: %+v", s)
			Expect(s.GetCount).To(Equal(s.HitCount + s.MHitCount + s.MissCount))
		})
	})

	Context("workload integration", func() {
		It("achieves a sane hit rate on an exponential working set", func() {
			const size = 256
			c, err := New[int64, int64](nopLog(), Config{Size: size, MSize: size, T: 4})
			Expect(err).To(BeNil())
			gen, err := workload.Expo(rand.New(rand.NewSource(7)), size, 0)
			Expect(err).To(BeNil())
			for i := 0; i < 64*size; i++ {
				k := gen()
				if _, ok := c.Get(k); !ok {
					c.Set(k, k)
				}
			}
			s := c.Stats()
			testutil.Byf("expo hit rate: %.3f (meta %.3f)", s.HitRate(), s.MetaHitRate())
			Expect(s.HitRate()).To(BeNumerically(">", 0.3))
			c.ExpectInvariantsOk()
		})
	})
})
