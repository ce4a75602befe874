package pqueue

// DList is a sorted doubly-linked-list PQueue backend with an insertion
// cursor. Push starts its position scan at the last pushed entry, so runs of
// similar priorities insert in O(1); worst case insertion is O(N). Suits
// access profiles that only touch near the extremes.
type DList[K comparable, V any] struct {
	count int
	seq   uint64

	// Sentinel entries. Real entries live between them:
	// nil <- head <-> e_0 <-> ... <-> e_(n-1) <-> tail -> nil
	// Such structure prevents nil checks in the link code.
	head, tail *Entry[K, V]

	cursor *Entry[K, V]
}

var _ PQueue[int, int] = (*DList[int, int])(nil)

// NewDList returns an empty list. The capacity argument is accepted for
// interface symmetry with NewHeap; lists do not preallocate.
func NewDList[K comparable, V any](capacity int) *DList[K, V] {
	_ = capacity
	l := &DList[K, V]{head: &Entry[K, V]{index: -1}, tail: &Entry[K, V]{index: -1}}
	link(l.head, l.tail)
	return l
}

func link[K comparable, V any](a, b *Entry[K, V]) { a.next, b.prev = b, a }

func (l *DList[K, V]) Len() int { return l.count }

func (l *DList[K, V]) Peek() *Entry[K, V] {
	if l.count == 0 {
		return nil
	}
	return l.head.next
}

func (l *DList[K, V]) Push(k K, v V, priority float64) *Entry[K, V] {
	l.seq++
	e := &Entry[K, V]{key: k, value: v, priority: priority, seq: l.seq, index: -1}
	pos := l.cursor
	if pos == nil {
		pos = l.tail
	}
	l.insert(e, pos)
	l.Move(e)
	l.cursor = e
	return e
}

func (l *DList[K, V]) Pull(e *Entry[K, V]) *Entry[K, V] {
	if e == nil {
		e = l.head.next
	}
	l.remove(e)
	return e
}

func (l *DList[K, V]) Swap(k K, v V, priority float64, old *Entry[K, V]) (e, pulled *Entry[K, V]) {
	pulled = l.Pull(old)
	e = l.Push(k, v, priority)
	return e, pulled
}

// Move re-sorts e locally: scan backwards from its old position for a smaller
// or equal entry, then forwards for a greater or equal one.
func (l *DList[K, V]) Move(e *Entry[K, V]) {
	pos := e.prev
	l.remove(e)
	for pos != l.head && less(e, pos) {
		pos = pos.prev
	}
	pos = pos.next
	for pos != l.tail && less(pos, e) {
		pos = pos.next
	}
	l.insert(e, pos)
}

func (l *DList[K, V]) Scale(m float64) {
	scaleCheck(m)
	for e := l.head.next; e != l.tail; e = e.next {
		e.priority *= m
	}
}

// Sort is insertion sort via Move, O(N^2) worst but near O(N) for nearly
// sorted data.
func (l *DList[K, V]) Sort() {
	pos := l.head.next
	for pos != l.tail {
		next := pos.next
		l.Move(pos)
		pos = next
	}
}

func (l *DList[K, V]) Each(fn func(*Entry[K, V])) {
	for e := l.head.next; e != l.tail; e = e.next {
		fn(e)
	}
}

// insert links e in before pos.
func (l *DList[K, V]) insert(e, pos *Entry[K, V]) {
	link(pos.prev, e)
	link(e, pos)
	l.count++
}

func (l *DList[K, V]) remove(e *Entry[K, V]) {
	if e == l.cursor {
		l.cursor = e.next
		if l.cursor == l.tail {
			l.cursor = nil
		}
	}
	link(e.prev, e.next)
	e.prev, e.next = nil, nil
	l.count--
}
