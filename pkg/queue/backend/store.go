package backend

import "container/heap"

// fifoStore is a ring buffer that grows by doubling when unbounded.
type fifoStore[T any] struct {
	buf   []T
	head  int
	count int
}

func newFIFOStore[T any](sizeHint int) *fifoStore[T] {
	if sizeHint <= 0 {
		sizeHint = 8
	}
	return &fifoStore[T]{buf: make([]T, sizeHint)}
}

func (s *fifoStore[T]) push(item T) {
	if s.count == len(s.buf) {
		s.grow()
	}
	s.buf[(s.head+s.count)%len(s.buf)] = item
	s.count++
}

func (s *fifoStore[T]) pop() T {
	item := s.buf[s.head]
	var zero T
	s.buf[s.head] = zero // clear reference
	s.head = (s.head + 1) % len(s.buf)
	s.count--
	return item
}

func (s *fifoStore[T]) len() int {
	return s.count
}

func (s *fifoStore[T]) grow() {
	next := make([]T, 2*len(s.buf))
	for i := 0; i < s.count; i++ {
		next[i] = s.buf[(s.head+i)%len(s.buf)]
	}
	s.buf = next
	s.head = 0
}

// lifoStore is a slice-backed stack.
type lifoStore[T any] struct {
	items []T
}

func (s *lifoStore[T]) push(item T) {
	s.items = append(s.items, item)
}

func (s *lifoStore[T]) pop() T {
	n := len(s.items)
	item := s.items[n-1]
	var zero T
	s.items[n-1] = zero // clear reference
	s.items = s.items[:n-1]
	return item
}

func (s *lifoStore[T]) len() int {
	return len(s.items)
}

// heapStore is a min-heap keyed on Item.Priority.
type heapStore[T any] struct {
	h itemHeap[T]
}

func (s *heapStore[T]) push(item Item[T]) {
	heap.Push(&s.h, item)
}

func (s *heapStore[T]) pop() Item[T] {
	return heap.Pop(&s.h).(Item[T])
}

func (s *heapStore[T]) len() int {
	return s.h.Len()
}

type itemHeap[T any] []Item[T]

func (h itemHeap[T]) Len() int            { return len(h) }
func (h itemHeap[T]) Less(i, j int) bool  { return h[i].Priority < h[j].Priority }
func (h itemHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *itemHeap[T]) Push(x interface{}) { *h = append(*h, x.(Item[T])) }

func (h *itemHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	var zero Item[T]
	old[n-1] = zero
	*h = old[:n-1]
	return item
}
