package sequence

// Queue is an unbounded FIFO queue backed by a growable ring buffer.
// Not safe for concurrent use.
type Queue[T any] struct {
	items []T
	head  int
	count int
}

func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 8
	}
	return &Queue[T]{items: make([]T, capacity)}
}

// Push appends a value to the tail of the queue.
func (q *Queue[T]) Push(value T) {
	if q.count == len(q.items) {
		q.grow()
	}
	q.items[(q.head+q.count)%len(q.items)] = value
	q.count++
}

// Pop removes and returns the value at the head of the queue.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.count == 0 {
		return zero, false
	}
	value := q.items[q.head]
	q.items[q.head] = zero // release the reference
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return value, true
}

// Peek returns the head value without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.items[q.head], true
}

func (q *Queue[T]) Len() int {
	return q.count
}

func (q *Queue[T]) IsEmpty() bool {
	return q.count == 0
}

// Filter retains only the values for which keep returns true, preserving
// order. Returns the number of removed values.
func (q *Queue[T]) Filter(keep func(T) bool) int {
	if q.count == 0 {
		return 0
	}
	kept := make([]T, 0, q.count)
	for i := 0; i < q.count; i++ {
		v := q.items[(q.head+i)%len(q.items)]
		if keep(v) {
			kept = append(kept, v)
		}
	}
	removed := q.count - len(kept)
	q.items = make([]T, max(len(kept), 8))
	copy(q.items, kept)
	q.head = 0
	q.count = len(kept)
	return removed
}

// Each calls fn for every queued value in FIFO order.
func (q *Queue[T]) Each(fn func(T)) {
	for i := 0; i < q.count; i++ {
		fn(q.items[(q.head+i)%len(q.items)])
	}
}

func (q *Queue[T]) grow() {
	resized := make([]T, len(q.items)*2)
	for i := 0; i < q.count; i++ {
		resized[i] = q.items[(q.head+i)%len(q.items)]
	}
	q.items = resized
	q.head = 0
}
