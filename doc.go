/*
Package dlfucache implements a Decaying Least-Frequently-Used cache: a
fixed-capacity map whose eviction policy ranks entries by an exponentially
decaying reference count, approximating the number of accesses over a sliding
window of T*size recent lookups. The decay time constant T tunes behaviour
continuously between pure LRU (T=0) and pure LFU (T=+Inf).

The algorithm is documented at
http://minkirri.apana.org.au/wiki/DecayingLFUCacheExpiry

Decay is amortized: instead of multiplying every stored count by a decay
factor on each access (O(N)), the per-access increment C grows geometrically
and is added to the touched entry. The logical count of an entry is its
stored priority divided by C. When C reaches 2 it and every stored priority
are halved, so each access costs amortized O(1) on top of the O(log N)
priority queue work.

Keys evicted from the cache keep their decayed count in a metadata tier of up
to msize entries. A later insertion of such a key promotes it back with its
accumulated history, so entries that keep getting requested regain residency
quickly instead of starting from scratch.

A Cache is not safe for concurrent use; callers wanting to share one across
goroutines must serialize access externally.

Example:

	c, _ := dlfucache.New[string, int](log.NewNop(), dlfucache.NewConfig(1024))
	c.Set("mykey", 2345)
	v, ok := c.Get("mykey") // => 2345, true
	c.Delete("mykey")       // => true
*/
package dlfucache
