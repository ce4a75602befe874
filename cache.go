package dlfucache

import (
	"fmt"
	"math"

	"github.com/facebookgo/stackerr"

	"github.com/dbaarda/DLFUCache/log"
	"github.com/dbaarda/DLFUCache/pqueue"
)

// Inf is the time constant value disabling decay, giving pure LFU behaviour.
var Inf = math.Inf(1)

// DefaultT is a decay time constant that works well for most access patterns.
const DefaultT = 4.0

// incMax is the increment ceiling: reaching it halves the increment and every
// stored priority in both tiers.
const incMax = 2.0

// lruGrowth is the increment growth used for T=0. Doubling before each touch
// makes the touched priority strictly greater than every decayed one, so the
// queue orders by recency alone.
const lruGrowth = 2.0

// Residency reports which tier, if any, holds a key.
type Residency int

const (
	Absent Residency = iota
	InCache
	InMeta
)

func (r Residency) String() string {
	switch r {
	case Absent:
		return "absent"
	case InCache:
		return "cache"
	case InMeta:
		return "meta"
	}
	panic(fmt.Sprintf("unexpected residency: %d", int(r)))
}

type Config struct {
	// Size is the cache tier capacity in entries. Must be at least 1.
	Size int
	// MSize is the metadata tier capacity in entries. Zero keeps no
	// metadata; negative means Size.
	MSize int
	// T is the decay time constant: counts approximate references over the
	// last T*Size accesses. 0 behaves as pure LRU, +Inf as pure LFU.
	T float64
}

// NewConfig returns a Config for size entries with MSize = size and T =
// DefaultT.
func NewConfig(size int) Config {
	return Config{Size: size, MSize: -1, T: DefaultT}
}

// Cache is a DLFU cache from K to V. It is a single-owner structure: no
// method may be called concurrently with another.
type Cache[K comparable, V any] struct {
	// OnEvict, if set, is called whenever a value leaves the cache tier
	// because a new key displaced it. It is not called on Delete or Clear.
	OnEvict func(k K, v V)

	size  int
	msize int
	t     float64
	// growth is the per-access multiplier for inc: exp(1/(T*size)).
	growth float64
	// inc is the current increment C. An access adds inc to the touched
	// priority; the logical count of a priority v is v/inc.
	inc float64
	lru bool

	cq *pqueue.Dict[K, V]        // cache tier: priority + value
	mq *pqueue.Dict[K, struct{}] // metadata tier: priority only

	stats Stats
	log   log.Logger
}

// New returns a Cache configured by conf. Reports invalid parameters as
// errors.
func New[K comparable, V any](l log.Logger, conf Config) (*Cache[K, V], error) {
	if conf.Size < 1 {
		return nil, stackerr.Newf("dlfucache: size must be positive, got %d", conf.Size)
	}
	if math.IsNaN(conf.T) || conf.T < 0 {
		return nil, stackerr.Newf("dlfucache: T must be a non-negative number or +Inf, got %v", conf.T)
	}
	msize := conf.MSize
	if msize < 0 {
		msize = conf.Size
	}
	c := &Cache[K, V]{
		size:  conf.Size,
		msize: msize,
		t:     conf.T,
		inc:   1.0,
		cq:    pqueue.NewHeapDict[K, V](conf.Size),
		mq:    pqueue.NewHeapDict[K, struct{}](msize),
		log:   l,
	}
	switch {
	case conf.T == 0:
		c.lru = true
		c.growth = lruGrowth
	case math.IsInf(conf.T, 1):
		c.growth = 1.0
	default:
		c.growth = math.Exp(1 / (conf.T * float64(conf.Size)))
		if c.growth >= math.MaxFloat64/incMax {
			// exp overflow: indistinguishable from the T=0 limit.
			c.lru = true
			c.growth = lruGrowth
		}
	}
	return c, nil
}

// Get returns the value cached for k. A metadata hit or a total miss both
// report !ok; the caller is expected to produce the value and Set it.
func (c *Cache[K, V]) Get(k K) (v V, ok bool) {
	defer c.checkInvariants()
	c.stats.GetCount++
	if e, hit := c.cq.Entry(k); hit {
		c.stats.HitCount++
		c.touchCache(e)
		return e.Value(), true
	}
	if e, hit := c.mq.Entry(k); hit {
		c.stats.MHitCount++
		c.touchMeta(e)
		return v, false
	}
	c.stats.MissCount++
	return v, false
}

// Set caches v for k. Overwriting a cached key does not count as a
// reference. When the cache tier is full the lowest-count entry is evicted
// into the metadata tier, displacing the metadata tier's own minimum if that
// is full too.
func (c *Cache[K, V]) Set(k K, v V) {
	defer c.checkInvariants()
	c.stats.SetCount++
	if e, ok := c.cq.Entry(k); ok {
		e.SetValue(v)
		return
	}
	p := c.admitPriority(k)
	if c.cq.Len() < c.size {
		c.cq.Push(k, v, p)
		return
	}
	_, evicted := c.cq.Swap(k, v, p, nil)
	c.log.Debugf("Evict %v (count %.3f) for %v.", evicted.Key(), evicted.Priority()/c.inc, k)
	c.admitMeta(evicted.Key(), evicted.Priority())
	if c.OnEvict != nil {
		c.OnEvict(evicted.Key(), evicted.Value())
	}
}

// Delete removes k from whichever tier holds it. The freed cache slot is
// filled only by the next insertion; nothing is promoted to take its place.
func (c *Cache[K, V]) Delete(k K) (deleted bool) {
	defer c.checkInvariants()
	c.stats.DelCount++
	if _, ok := c.cq.PopKey(k); ok {
		return true
	}
	_, ok := c.mq.PopKey(k)
	return ok
}

// Contains reports which tier holds k. It is read-only: no counter moves, no
// priority changes.
func (c *Cache[K, V]) Contains(k K) Residency {
	if c.cq.Contains(k) {
		return InCache
	}
	if c.mq.Contains(k) {
		return InMeta
	}
	return Absent
}

// Clear drops every entry in both tiers, resets the increment and zeroes the
// operation counters.
func (c *Cache[K, V]) Clear() {
	c.cq = pqueue.NewHeapDict[K, V](c.size)
	c.mq = pqueue.NewHeapDict[K, struct{}](c.msize)
	c.inc = 1.0
	c.ResetStats()
}

// touchCache applies one reference to a cache tier entry and advances the
// increment.
func (c *Cache[K, V]) touchCache(e *pqueue.Entry[K, V]) {
	if c.lru {
		c.inc *= lruGrowth
		e.SetPriority(c.inc)
	} else {
		e.SetPriority(e.Priority() + c.inc)
		c.inc *= c.growth
	}
	c.cq.Move(e)
	c.rescale()
}

// touchMeta is touchCache for the metadata tier.
func (c *Cache[K, V]) touchMeta(e *pqueue.Entry[K, struct{}]) {
	if c.lru {
		c.inc *= lruGrowth
		e.SetPriority(c.inc)
	} else {
		e.SetPriority(e.Priority() + c.inc)
		c.inc *= c.growth
	}
	c.mq.Move(e)
	c.rescale()
}

// admitPriority computes the cache tier priority for an inserted key. A key
// with retained metadata is promoted with its accumulated history plus one
// reference; a fresh key starts at one logical count.
func (c *Cache[K, V]) admitPriority(k K) float64 {
	if e, ok := c.mq.PopKey(k); ok {
		c.log.Debugf("Promote %v (count %.3f).", k, e.Priority()/c.inc)
		return e.Priority() + c.inc
	}
	return c.inc
}

// admitMeta records an evicted key's count in the metadata tier. The evictee
// is always admitted; when the tier is full its then-minimum is dropped, even
// if the evictee's own count is lower.
func (c *Cache[K, V]) admitMeta(k K, p float64) {
	if c.msize == 0 {
		return
	}
	if c.mq.Len() < c.msize {
		c.mq.Push(k, struct{}{}, p)
		return
	}
	_, dropped := c.mq.Swap(k, struct{}{}, p, nil)
	c.log.Debugf("Drop metadata %v for %v.", dropped.Key(), k)
}

// rescale divides the increment and every stored priority by the power of
// two bringing the increment back into [1, incMax). Power-of-two scaling is
// exact in the mantissa, so relative order and logical counts are unchanged.
// Runs to completion before any caller can observe the queues.
func (c *Cache[K, V]) rescale() {
	if c.inc < incMax {
		return
	}
	m := math.Ldexp(1, -int(math.Floor(math.Log2(c.inc))))
	c.inc *= m
	c.cq.Scale(m)
	c.mq.Scale(m)
	c.log.Debugf("Rescale by %v: increment back to %v.", m, c.inc)
}

// Size returns the cache tier capacity.
func (c *Cache[K, V]) Size() int { return c.size }

// MetaSize returns the metadata tier capacity.
func (c *Cache[K, V]) MetaSize() int { return c.msize }

// T returns the decay time constant.
func (c *Cache[K, V]) T() float64 { return c.t }

// C returns the current increment. Always in [1, 2).
func (c *Cache[K, V]) C() float64 { return c.inc }

// Len returns the number of values in the cache tier.
func (c *Cache[K, V]) Len() int { return c.cq.Len() }

// MetaLen returns the number of tracked evicted keys.
func (c *Cache[K, V]) MetaLen() int { return c.mq.Len() }

// Count returns the logical decayed access count for k, in either tier, or 0
// for an absent key.
func (c *Cache[K, V]) Count(k K) float64 {
	if p, ok := c.cq.Priority(k); ok {
		return p / c.inc
	}
	if p, ok := c.mq.Priority(k); ok {
		return p / c.inc
	}
	return 0
}

func (c *Cache[K, V]) String() string {
	s := c.stats
	return fmt.Sprintf("DLFUCache(size=%d, msize=%d, T=%.1f): gets=%d hit=%5.3f mhit=%5.3f",
		c.size, c.msize, c.t, s.GetCount, s.HitRate(), s.MetaHitRate())
}
