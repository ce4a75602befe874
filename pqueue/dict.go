package pqueue

// Dict is a mapping view over a PQueue: a key-to-entry index kept alongside the
// queue so any key can be addressed directly. Capacity is the caller's
// concern; Dict itself never refuses a Push.
type Dict[K comparable, V any] struct {
	pq    PQueue[K, V]
	index map[K]*Entry[K, V]
}

// NewDict wraps an existing queue. The queue must be empty.
func NewDict[K comparable, V any](pq PQueue[K, V]) *Dict[K, V] {
	return &Dict[K, V]{pq: pq, index: make(map[K]*Entry[K, V])}
}

// NewHeapDict returns a Dict over a binary heap preallocated for capacity
// entries, the reference configuration.
func NewHeapDict[K comparable, V any](capacity int) *Dict[K, V] {
	return &Dict[K, V]{pq: NewHeap[K, V](capacity), index: make(map[K]*Entry[K, V], capacity)}
}

func (d *Dict[K, V]) Len() int { return d.pq.Len() }

func (d *Dict[K, V]) Contains(k K) bool {
	_, ok := d.index[k]
	return ok
}

// Peek returns the top entry, nil if empty.
func (d *Dict[K, V]) Peek() *Entry[K, V] { return d.pq.Peek() }

// Entry returns the entry for k, if any.
func (d *Dict[K, V]) Entry(k K) (*Entry[K, V], bool) {
	e, ok := d.index[k]
	return e, ok
}

// Priority returns k's priority, reporting a missing key in the second value.
func (d *Dict[K, V]) Priority(k K) (float64, bool) {
	e, ok := d.index[k]
	if !ok {
		return 0, false
	}
	return e.priority, true
}

// Value returns k's value, reporting a missing key in the second value.
func (d *Dict[K, V]) Value(k K) (V, bool) {
	e, ok := d.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Push inserts k, or if k is already present updates its value and priority
// and re-sorts it.
func (d *Dict[K, V]) Push(k K, v V, priority float64) *Entry[K, V] {
	if e, ok := d.index[k]; ok {
		e.value = v
		e.priority = priority
		d.pq.Move(e)
		return e
	}
	e := d.pq.Push(k, v, priority)
	d.index[k] = e
	return e
}

// Pop removes and returns the top entry, nil if empty.
func (d *Dict[K, V]) Pop() *Entry[K, V] {
	if d.pq.Len() == 0 {
		return nil
	}
	e := d.pq.Pull(nil)
	delete(d.index, e.key)
	return e
}

// PopKey removes and returns k's entry, reporting a missing key.
func (d *Dict[K, V]) PopKey(k K) (*Entry[K, V], bool) {
	e, ok := d.index[k]
	if !ok {
		return nil, false
	}
	d.pq.Pull(e)
	delete(d.index, k)
	return e, true
}

// Move re-sorts e after an in-place priority change.
func (d *Dict[K, V]) Move(e *Entry[K, V]) { d.pq.Move(e) }

// Swap pushes k and pulls old (the top if nil) in one queue operation, never
// holding more than one extra entry. If k is already present it is removed
// first.
func (d *Dict[K, V]) Swap(k K, v V, priority float64, old *Entry[K, V]) (e, pulled *Entry[K, V]) {
	if prev, ok := d.index[k]; ok && prev != old {
		d.pq.Pull(prev)
		delete(d.index, k)
	}
	e, pulled = d.pq.Swap(k, v, priority, old)
	delete(d.index, pulled.key)
	d.index[k] = e
	return e, pulled
}

// Scale multiplies every priority by m. Delegates to the queue; order is
// preserved for m > 0.
func (d *Dict[K, V]) Scale(m float64) { d.pq.Scale(m) }

// Each yields entries in arbitrary order. Priorities mutated during iteration
// require Sort afterwards.
func (d *Dict[K, V]) Each(fn func(*Entry[K, V])) { d.pq.Each(fn) }

// Sort restores queue order after bulk priority mutation.
func (d *Dict[K, V]) Sort() { d.pq.Sort() }
