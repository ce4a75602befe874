package dlfucache

import (
	"math"

	"github.com/dbaarda/DLFUCache/pqueue"
)

// Stats holds the operation counters of a Cache. Every Get increments exactly
// one of HitCount, MHitCount or MissCount.
type Stats struct {
	GetCount int64
	SetCount int64
	DelCount int64

	HitCount  int64 // gets answered from the cache tier
	MHitCount int64 // gets that found retained metadata only
	MissCount int64 // gets that found nothing
}

// HitRate is the fraction of gets answered from the cache tier, NaN before
// the first get.
func (s Stats) HitRate() float64 { return rate(s.HitCount, s.GetCount) }

// MetaHitRate is the fraction of gets that hit retained metadata.
func (s Stats) MetaHitRate() float64 { return rate(s.MHitCount, s.GetCount) }

// TotalHitRate is the fraction of gets that hit either tier.
func (s Stats) TotalHitRate() float64 { return rate(s.HitCount+s.MHitCount, s.GetCount) }

func rate(part, total int64) float64 {
	if total == 0 {
		return math.NaN()
	}
	return float64(part) / float64(total)
}

// Stats returns a snapshot of the operation counters.
func (c *Cache[K, V]) Stats() Stats { return c.stats }

// ResetStats zeroes the operation counters without touching cache contents.
func (c *Cache[K, V]) ResetStats() { c.stats = Stats{} }

// TierStats summarizes the logical counts of one tier at a point in time.
// Moments are NaN for an empty tier.
type TierStats struct {
	Len int
	// Min, Avg, Var and Dev describe the logical counts (priority / C).
	Min float64
	Avg float64
	Var float64
	Dev float64
}

// CacheStats computes count statistics over the cache tier. O(Len).
func (c *Cache[K, V]) CacheStats() TierStats { return tierStats(c.cq, c.inc) }

// MetaStats computes count statistics over the metadata tier. O(MetaLen).
func (c *Cache[K, V]) MetaStats() TierStats { return tierStats(c.mq, c.inc) }

func tierStats[K comparable, V any](d *pqueue.Dict[K, V], inc float64) TierStats {
	s := TierStats{Len: d.Len(), Min: math.NaN(), Avg: math.NaN(), Var: math.NaN(), Dev: math.NaN()}
	if s.Len == 0 {
		return s
	}
	// The top of a min-queue is the minimum count.
	s.Min = d.Peek().Priority() / inc
	var sum, sum2 float64
	d.Each(func(e *pqueue.Entry[K, V]) {
		count := e.Priority() / inc
		sum += count
		sum2 += count * count
	})
	n := float64(s.Len)
	s.Avg = sum / n
	s.Var = sum2/n - s.Avg*s.Avg
	if s.Var < 0 { // rounding
		s.Var = 0
	}
	s.Dev = math.Sqrt(s.Var)
	return s
}
