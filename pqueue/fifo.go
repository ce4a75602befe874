package pqueue

// FIFO is a PQueue backend that keeps insertion order and ignores priorities
// once entries are in. Push appends at the back, Peek and Pull default to the
// front, Move sends an entry to the back. Queue-end operations are O(1); this
// suits profiles where every touched entry becomes the newest, such as pure
// recency ordering.
type FIFO[K comparable, V any] struct {
	count int
	seq   uint64

	// Sentinels, same layout as DList.
	head, tail *Entry[K, V]
}

var _ PQueue[int, int] = (*FIFO[int, int])(nil)

// NewFIFO returns an empty queue. capacity is accepted for symmetry with
// NewHeap.
func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	_ = capacity
	q := &FIFO[K, V]{head: &Entry[K, V]{index: -1}, tail: &Entry[K, V]{index: -1}}
	link(q.head, q.tail)
	return q
}

func (q *FIFO[K, V]) Len() int { return q.count }

func (q *FIFO[K, V]) Peek() *Entry[K, V] {
	if q.count == 0 {
		return nil
	}
	return q.head.next
}

func (q *FIFO[K, V]) Push(k K, v V, priority float64) *Entry[K, V] {
	q.seq++
	e := &Entry[K, V]{key: k, value: v, priority: priority, seq: q.seq, index: -1}
	q.append(e)
	return e
}

func (q *FIFO[K, V]) Pull(e *Entry[K, V]) *Entry[K, V] {
	if e == nil {
		e = q.head.next
	}
	q.remove(e)
	return e
}

func (q *FIFO[K, V]) Swap(k K, v V, priority float64, old *Entry[K, V]) (e, pulled *Entry[K, V]) {
	pulled = q.Pull(old)
	e = q.Push(k, v, priority)
	return e, pulled
}

// Move sends e to the back of the queue.
func (q *FIFO[K, V]) Move(e *Entry[K, V]) {
	q.remove(e)
	q.append(e)
}

func (q *FIFO[K, V]) Scale(m float64) {
	scaleCheck(m)
	for e := q.head.next; e != q.tail; e = e.next {
		e.priority *= m
	}
}

// Sort is a no-op: a FIFO's order is its insertion order.
func (q *FIFO[K, V]) Sort() {}

func (q *FIFO[K, V]) Each(fn func(*Entry[K, V])) {
	for e := q.head.next; e != q.tail; e = e.next {
		fn(e)
	}
}

func (q *FIFO[K, V]) append(e *Entry[K, V]) {
	link(q.tail.prev, e)
	link(e, q.tail)
	q.count++
}

func (q *FIFO[K, V]) remove(e *Entry[K, V]) {
	link(e.prev, e.next)
	e.prev, e.next = nil, nil
	q.count--
}
