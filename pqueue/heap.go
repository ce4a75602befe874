package pqueue

// Heap is the binary-heap PQueue backend. Entries record their slot index, so
// Pull and Move of a referenced entry need no search. Push, Pull and Swap of
// the top are O(log N); Move of an entry whose priority changed by little is
// usually O(1).
type Heap[K comparable, V any] struct {
	entries []*Entry[K, V]
	seq     uint64
}

var _ PQueue[int, int] = (*Heap[int, int])(nil)

// NewHeap returns an empty heap preallocated for capacity entries.
func NewHeap[K comparable, V any](capacity int) *Heap[K, V] {
	return &Heap[K, V]{entries: make([]*Entry[K, V], 0, capacity)}
}

// HeapFrom builds a heap from an initial key-to-priority mapping in O(N),
// heapifying once instead of sifting per push.
func HeapFrom[K comparable](items map[K]float64) *Heap[K, struct{}] {
	h := NewHeap[K, struct{}](len(items))
	for k, p := range items {
		h.seq++
		h.entries = append(h.entries, &Entry[K, struct{}]{key: k, priority: p, seq: h.seq, index: len(h.entries)})
	}
	h.Sort()
	return h
}

func (h *Heap[K, V]) Len() int { return len(h.entries) }

func (h *Heap[K, V]) Peek() *Entry[K, V] {
	if len(h.entries) == 0 {
		return nil
	}
	return h.entries[0]
}

func (h *Heap[K, V]) Push(k K, v V, priority float64) *Entry[K, V] {
	h.seq++
	e := &Entry[K, V]{key: k, value: v, priority: priority, seq: h.seq, index: len(h.entries)}
	h.entries = append(h.entries, e)
	h.up(e.index)
	return e
}

func (h *Heap[K, V]) Pull(e *Entry[K, V]) *Entry[K, V] {
	if e == nil {
		e = h.entries[0]
	}
	i := e.index
	last := len(h.entries) - 1
	if i != last {
		h.swap(i, last)
	}
	h.entries[last] = nil
	h.entries = h.entries[:last]
	if i != last {
		h.fix(i)
	}
	e.index = -1
	return e
}

func (h *Heap[K, V]) Swap(k K, v V, priority float64, old *Entry[K, V]) (e, pulled *Entry[K, V]) {
	if old == nil {
		old = h.entries[0]
	}
	h.seq++
	e = &Entry[K, V]{key: k, value: v, priority: priority, seq: h.seq, index: old.index}
	h.entries[old.index] = e
	old.index = -1
	h.fix(e.index)
	return e, old
}

func (h *Heap[K, V]) Move(e *Entry[K, V]) { h.fix(e.index) }

func (h *Heap[K, V]) Scale(m float64) {
	scaleCheck(m)
	for _, e := range h.entries {
		e.priority *= m
	}
}

// Sort re-heapifies in O(N).
func (h *Heap[K, V]) Sort() {
	for i := len(h.entries)/2 - 1; i >= 0; i-- {
		h.down(i)
	}
}

func (h *Heap[K, V]) Each(fn func(*Entry[K, V])) {
	for _, e := range h.entries {
		fn(e)
	}
}

// fix restores the heap property around slot i: try to float it up, then sink
// it down if it did not move.
func (h *Heap[K, V]) fix(i int) {
	if !h.up(i) {
		h.down(i)
	}
}

func (h *Heap[K, V]) up(i int) (moved bool) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(h.entries[i], h.entries[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
		moved = true
	}
	return moved
}

func (h *Heap[K, V]) down(i int) (moved bool) {
	n := len(h.entries)
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && less(h.entries[right], h.entries[child]) {
			child = right
		}
		if !less(h.entries[child], h.entries[i]) {
			break
		}
		h.swap(i, child)
		i = child
		moved = true
	}
	return moved
}

func (h *Heap[K, V]) swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}
